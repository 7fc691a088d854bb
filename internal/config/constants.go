package config

// ConfigFileName is the runtime configuration file looked up by FindConfig.
const ConfigFileName = "haxby.yaml"

// ConfigFileNames are all recognized configuration file names
var ConfigFileNames = []string{"haxby.yaml", "haxby.yml"}

// Reserved attribute names used by native extensions to stash foreign state
const (
	PathPayloadAttr     = "__path"
	PatternPayloadAttr  = "__pattern"
	IteratorPayloadAttr = "__iterator"
)

// Nested type names that act as protocol hooks on user types
const (
	ErrorTypeName    = "Error"
	IteratorTypeName = "Iterator"
	MatchTypeName    = "Match"
)

// Built-in type names
const (
	AnyTypeName           = "Any"
	IntTypeName           = "Int"
	FloatTypeName         = "Float"
	BoolTypeName          = "Bool"
	StringTypeName        = "String"
	ListTypeName          = "List"
	CodeObjectTypeName    = "CodeObject"
	FunctionTypeName      = "Function"
	BoundFunctionTypeName = "BoundFunction"
	MixinTypeName         = "Mixin"
	ModuleTypeName        = "Module"
	OpaqueTypeName        = "Opaque"
	TypeCheckTypeName     = "TypeCheck"
	TypeTypeName          = "Type"
	UnimplementedTypeName = "Unimplemented"
	UnitTypeName          = "Unit"
	ResultTypeName        = "Result"
	MaybeTypeName         = "Maybe"
)

// Wrapper case names
const (
	OkCaseName   = "Ok"
	ErrCaseName  = "Err"
	SomeCaseName = "Some"
	NoneCaseName = "None"
)

// Built-in function names
const (
	HasAttrFuncName     = "hasattr"
	ListAttrsFuncName   = "listattrs"
	TypeOfFuncName      = "typeof"
	PrettyprintFuncName = "prettyprint"
)

// Module names
const (
	BuiltinsModuleName = "builtins"
	PathModuleName     = "path"
	RegexModuleName    = "regex"
)
