package openapi_test

import (
	"fmt"
	"net/http"

	"github.com/Gobd/zodgen/openapi"
)

type Item struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Price float64 `json:"price" validate:"required,min=0.01"`
}

func ExampleAddEndpoint() {
	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")
	_ = openapi.AddComponent(doc, "Item", Item{})

	_ = openapi.AddEndpoint(doc, http.MethodPost, "/items", "createItem", openapi.Endpoint{
		Summary:  "Create an item",
		Request:  openapi.Component("Item"),
		Response: openapi.Component("Item"),
	})

	op := doc.Paths.Value("/items").Post
	fmt.Println(op.OperationID)
	fmt.Println(op.RequestBody.Value.Content["application/json"].Schema.Ref)
	// Output:
	// createItem
	// #/components/schemas/Item
}

func ExampleDocBase() {
	doc := openapi.DocBase("My Service", "A cool service", "0.1.0")
	fmt.Println(doc.Info.Title)
	fmt.Println(doc.OpenAPI)
	// Output:
	// My Service
	// 3.0.3
}

func ExampleKeyOrderOf() {
	order, _ := openapi.KeyOrderOf([]byte(`
components:
  schemas:
    Pet:
      properties:
        name: {type: string}
        id: {type: integer}
`))
	fmt.Println(order.Keys("/components/schemas/Pet/properties"))
	// Output: [name id]
}
