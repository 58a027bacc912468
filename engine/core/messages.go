package core

// User-facing message formats shared by every engine.
const (
	MsgParameterEmpty          = "The parameter '%s' must be a non-empty string."
	MsgParameterNil            = "The parameter '%s' must be a non-nullable."
	MsgTypeConversionFailed    = "Cannot convert object of type `%s` to type `%s`."
	MsgNullToValueType         = "Cannot convert null to a value type."
	MsgDefaultEngineMissing    = "Name of default JavaScript engine not specified."
	MsgEngineFactoryNotFound   = "Could not find a factory, that creates an instance of the JavaScript engine with name `%s`."
	MsgHostObjectNotSupported  = "The embedded host object '%s' has a type `%s`, which is not supported."
	MsgHostTypeNotSupported    = "The embedded host type `%s` is not supported."
	MsgFunctionNotFound        = "The function with the name '%s' does not exist."
	MsgArgumentNotSupported    = "One of the function parameters '%s' has a type `%s`, which is not supported."
	MsgFunctionNameInvalid     = "The function name '%s' has incorrect format."
	MsgScriptItemNameInvalid   = "The script item name '%s' has incorrect format."
	MsgVariableNameInvalid     = "The variable name '%s' has incorrect format."
	MsgDocumentNameInvalid     = "The document name '%s' has incorrect format."
	MsgEngineNotLoaded         = "During loading of %s error has occurred."
	MsgSeeMoreDetails          = "See more details: %s"
	MsgSeeOriginalErrorMessage = "See the original error message: %s"
	MsgNativeLibraryNotFound   = "Assembly or native library `%s` not found."
	MsgInstallationRequired    = "Try to install %s."
	MsgReturnTypeNotSupported  = "The type of return value `%s` is not supported."
	MsgScriptInterrupted       = "Script execution was interrupted."
	MsgVariableNotSupported    = "The variable '%s' has a type `%s`, which is not supported."
	MsgSettingNotSupported     = "The %s engine does not support the following settings: %s."
	MsgEngineDisposed          = "Cannot access a disposed %s engine."
)
