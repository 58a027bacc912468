package core

import "regexp"

var (
	identifierRegex   = regexp.MustCompile(`^` + jsNamePattern + `$`)
	documentNameRegex = regexp.MustCompile(`^` + documentNamePattern + `$`)
)

// IsValidIdentifier reports whether name is a plain, undotted JS identifier.
func IsValidIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}

func ValidateVariableName(name string) error {
	return validateName("variableName", MsgVariableNameInvalid, name)
}

func ValidateFunctionName(name string) error {
	return validateName("functionName", MsgFunctionNameInvalid, name)
}

// ValidateItemName checks the global name of an embedded host object or type.
func ValidateItemName(name string) error {
	return validateName("itemName", MsgScriptItemNameInvalid, name)
}

func validateName(param, format, name string) error {
	if name == "" {
		return NewEmptyParameterError(param)
	}
	if !IsValidIdentifier(name) {
		return NewArgumentError(format, name)
	}
	return nil
}

// ValidateDocumentName accepts the empty name, which marks an anonymous script.
func ValidateDocumentName(name string) error {
	if name == "" || documentNameRegex.MatchString(name) {
		return nil
	}
	return NewArgumentError(MsgDocumentNameInvalid, name)
}
