package parser

// Declarative tree-sitter queries for each grammar-driven plugin. The Go
// grammar bindings do not embed highlight queries, so trimmed-down variants
// live here as constants. A query that fails to compile is a plugin bug and
// aborts registry construction.

const rustDefQuery = `
  (function_item name: (identifier) @name)
  (struct_item name: (type_identifier) @name)
  (enum_item name: (type_identifier) @name)
  (union_item name: (type_identifier) @name)
  (type_item name: (type_identifier) @name)
  (trait_item name: (type_identifier) @name)
  (impl_item type: (type_identifier) @name)
  (impl_item type: (scoped_type_identifier) @name)
`

const rustCallQuery = `
  (call_expression function: (identifier) @call)
  (call_expression function: (scoped_identifier name: (identifier) @call))
  (call_expression function: (field_expression field: (field_identifier) @call))
  (struct_expression name: (type_identifier) @call)
  (struct_expression name: (scoped_type_identifier) @call)
  (parameter type: (type_identifier) @call)
  (parameter type: (scoped_type_identifier) @call)
  (generic_type type: (type_identifier) @call)
  (generic_type type: (scoped_type_identifier) @call)
  (reference_type type: (type_identifier) @call)
  (reference_type type: (scoped_type_identifier) @call)
  (function_item return_type: (type_identifier) @call)
  (function_item return_type: (scoped_type_identifier) @call)
`

const rustHighlightQuery = `
  (line_comment) @comment
  (block_comment) @comment
  (string_literal) @string
  (raw_string_literal) @string
  (char_literal) @string
  (integer_literal) @number
  (float_literal) @number
  (boolean_literal) @constant
  (type_identifier) @type
  (primitive_type) @type.builtin
  (field_identifier) @property
  (mutable_specifier) @keyword
  (function_item name: (identifier) @function)
  (call_expression function: (identifier) @function)
  (call_expression function: (field_expression field: (field_identifier) @function))
  (macro_invocation macro: (identifier) @function.macro)
  (attribute_item) @attribute
  (self) @variable.builtin
  "fn" @keyword
  "let" @keyword
  "use" @keyword
  "pub" @keyword
  "impl" @keyword
  "struct" @keyword
  "enum" @keyword
  "trait" @keyword
  "mod" @keyword
  "match" @keyword
  "if" @keyword
  "else" @keyword
  "for" @keyword
  "while" @keyword
  "loop" @keyword
  "return" @keyword
`

const pythonDefQuery = `
  (function_definition name: (identifier) @name)
  (class_definition name: (identifier) @name)
`

const pythonCallQuery = `
  (call function: (identifier) @call)
  (call function: (attribute attribute: (identifier) @call))
`

const pythonHighlightQuery = `
  (comment) @comment
  (string) @string
  (integer) @number
  (float) @number
  (true) @constant
  (false) @constant
  (none) @constant
  (function_definition name: (identifier) @function)
  (class_definition name: (identifier) @type)
  (call function: (identifier) @function)
  (call function: (attribute attribute: (identifier) @function))
  (attribute attribute: (identifier) @property)
  (decorator) @attribute
  "def" @keyword
  "class" @keyword
  "import" @keyword
  "from" @keyword
  "return" @keyword
  "if" @keyword
  "elif" @keyword
  "else" @keyword
  "for" @keyword
  "while" @keyword
  "lambda" @keyword
  "with" @keyword
  "try" @keyword
  "except" @keyword
  "raise" @keyword
`

const javascriptDefQuery = `
  (function_declaration name: (identifier) @name)
  (method_definition name: (property_identifier) @name)
  (class_declaration name: (identifier) @name)
  (class name: (identifier) @name)
`

const javascriptCallQuery = `
  (call_expression function: (identifier) @call)
  (call_expression function: (member_expression property: (property_identifier) @call))
  (new_expression constructor: (identifier) @call)
  (new_expression constructor: (member_expression property: (property_identifier) @call))
`

const javascriptHighlightQuery = `
  (comment) @comment
  (string) @string
  (template_string) @string
  (number) @number
  (true) @constant
  (false) @constant
  (null) @constant
  (undefined) @constant
  (function_declaration name: (identifier) @function)
  (method_definition name: (property_identifier) @function)
  (call_expression function: (identifier) @function)
  (call_expression function: (member_expression property: (property_identifier) @function))
  (property_identifier) @property
  "function" @keyword
  "const" @keyword
  "let" @keyword
  "var" @keyword
  "return" @keyword
  "if" @keyword
  "else" @keyword
  "for" @keyword
  "while" @keyword
  "class" @keyword
  "new" @keyword
  "import" @keyword
  "export" @keyword
  "async" @keyword
  "await" @keyword
`

// Alternate highlight query used for the markup-flavored extension (.jsx):
// the base palette plus JSX element names rendered as types.
const jsxHighlightQuery = javascriptHighlightQuery + `
  (jsx_opening_element name: (identifier) @type)
  (jsx_closing_element name: (identifier) @type)
  (jsx_self_closing_element name: (identifier) @type)
`

const typescriptDefQuery = `
  (function_declaration name: (identifier) @name)
  (method_signature name: (property_identifier) @name)
  (method_definition name: (property_identifier) @name)
  (class_declaration name: (type_identifier) @name)
  (abstract_class_declaration name: (type_identifier) @name)
  (interface_declaration name: (type_identifier) @name)
  (enum_declaration name: (identifier) @name)
  (type_alias_declaration name: (type_identifier) @name)
`

const typescriptCallQuery = `
  (call_expression function: (identifier) @call)
  (call_expression function: (member_expression property: (property_identifier) @call))
  (new_expression constructor: (identifier) @call)
  (new_expression constructor: (member_expression property: (property_identifier) @call))
  (type_annotation (type_identifier) @call)
`

const typescriptHighlightQuery = `
  (comment) @comment
  (string) @string
  (template_string) @string
  (number) @number
  (true) @constant
  (false) @constant
  (null) @constant
  (type_identifier) @type
  (function_declaration name: (identifier) @function)
  (method_definition name: (property_identifier) @function)
  (call_expression function: (identifier) @function)
  (call_expression function: (member_expression property: (property_identifier) @function))
  (property_identifier) @property
  "function" @keyword
  "const" @keyword
  "let" @keyword
  "var" @keyword
  "return" @keyword
  "if" @keyword
  "else" @keyword
  "for" @keyword
  "while" @keyword
  "class" @keyword
  "new" @keyword
  "import" @keyword
  "export" @keyword
  "interface" @keyword
  "type" @keyword
  "enum" @keyword
`

const goDefQuery = `
  (function_declaration name: (identifier) @name)
  (method_declaration name: (field_identifier) @name)
  (type_declaration (type_spec name: (type_identifier) @name))
`

const goCallQuery = `
  (call_expression function: (identifier) @call)
  (call_expression function: (selector_expression field: (field_identifier) @call))
  (composite_literal type: (type_identifier) @call)
`

const goHighlightQuery = `
  (comment) @comment
  (interpreted_string_literal) @string
  (raw_string_literal) @string
  (rune_literal) @string
  (int_literal) @number
  (float_literal) @number
  (true) @constant
  (false) @constant
  (nil) @constant
  (type_identifier) @type
  (field_identifier) @property
  (function_declaration name: (identifier) @function)
  (method_declaration name: (field_identifier) @function)
  (call_expression function: (identifier) @function)
  (call_expression function: (selector_expression field: (field_identifier) @function))
  "func" @keyword
  "return" @keyword
  "if" @keyword
  "else" @keyword
  "for" @keyword
  "range" @keyword
  "type" @keyword
  "struct" @keyword
  "interface" @keyword
  "package" @keyword
  "import" @keyword
  "var" @keyword
  "const" @keyword
  "go" @keyword
  "defer" @keyword
  "map" @keyword
  "chan" @keyword
  "select" @keyword
  "switch" @keyword
  "case" @keyword
`

const javaDefQuery = `
  (class_declaration name: (identifier) @name)
  (interface_declaration name: (identifier) @name)
  (enum_declaration name: (identifier) @name)
  (method_declaration name: (identifier) @name)
  (constructor_declaration name: (identifier) @name)
`

const javaCallQuery = `
  (method_invocation name: (identifier) @call)
  (object_creation_expression type: (type_identifier) @call)
`

const javaHighlightQuery = `
  (line_comment) @comment
  (block_comment) @comment
  (string_literal) @string
  (character_literal) @string
  (decimal_integer_literal) @number
  (decimal_floating_point_literal) @number
  (true) @constant
  (false) @constant
  (null_literal) @constant
  (type_identifier) @type
  (void_type) @type
  (method_declaration name: (identifier) @function)
  (method_invocation name: (identifier) @function)
  (field_access field: (identifier) @property)
  "class" @keyword
  "interface" @keyword
  "enum" @keyword
  "public" @keyword
  "private" @keyword
  "protected" @keyword
  "static" @keyword
  "final" @keyword
  "return" @keyword
  "if" @keyword
  "else" @keyword
  "for" @keyword
  "while" @keyword
  "new" @keyword
  "import" @keyword
  "package" @keyword
`

const cssHighlightQuery = `
  (comment) @comment
  (string_value) @string
  (integer_value) @number
  (float_value) @number
  (property_name) @property
  (tag_name) @type
  (class_name) @type
  (id_name) @type
  (plain_value) @constant
  (color_value) @constant
`

const htmlHighlightQuery = `
  (comment) @comment
  (tag_name) @keyword
  (attribute_name) @property
  (quoted_attribute_value) @string
  (doctype) @keyword
`
