// Package openapi loads the documents zodgen compiles and builds small
// OpenAPI documents in code.
//
// [Load] and [LoadData] read an OpenAPI 3 document, pull external
// references into the document's components, and record the declared
// order of every mapping so generated code follows the source:
//
//	spec, err := openapi.Load(ctx, "petstore.yaml", openapi.LoadOptions{Validate: true})
//	if err != nil {
//	    return err
//	}
//	doc, err := convert.Document(spec.Doc, convert.DocumentOptions{Order: spec.Order})
//
// [LoadJSONSchema] does the same for a standalone JSON Schema document.
//
// [DocBase], [AddComponent], and [AddEndpoint] build documents from Go
// values. [ResolveRefs] then links references the way the loader would:
//
//	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")
//	openapi.AddComponent(doc, "Item", Item{})
//	err := openapi.AddEndpoint(doc, http.MethodPost, "/items", "createItem", openapi.Endpoint{
//	    Request:  openapi.Component("Item"),
//	    Response: openapi.Component("Item"),
//	})
package openapi
