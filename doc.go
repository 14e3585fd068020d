// Package zodgen compiles OpenAPI 3 and JSON Schema documents into
// TypeScript modules of zod validators with matching type declarations.
//
// Load a configuration and run the pipeline in one call:
//
//	cfg, err := zodgen.LoadConfig("zodgen.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := zodgen.Generate(ctx, cfg)
//
// [Generate] loads and converts the input, orders the components, and
// writes the module. [Compile] runs the last two steps on a document that
// was converted elsewhere.
//
// Sub-packages:
//   - ir – the intermediate schema model and its errors
//   - openapi – document loading, declaration order, and builder helpers
//   - convert – source schemas to IR
//   - graph – emission order and reference cycles
//   - writer – IR to zod and TypeScript text
//   - mirror – IR back to OpenAPI schemas
//   - transform – identifier and file name transforms
package zodgen
