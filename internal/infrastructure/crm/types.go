package crm

import "encoding/json"

// GraphQL mutations used against the CRM order API
const (
	addOrderMutation = `mutation ($input: AddOrderInput!) {
  orderMutation {
    addOrder(input: $input) {
      id
    }
  }
}`

	updateStatusMutation = `mutation ($input: UpdateOrderStatusInput!) {
  orderMutation {
    updateStatus(input: $input) {
      id
      status
    }
  }
}`
)

// graphQLRequest is the POST body for every CRM call
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphQLError is a single entry in the response errors array
type graphQLError struct {
	Message string `json:"message"`
}

// humanNameField carries the customer name in the CRM's field format
type humanNameField struct {
	Field string         `json:"field"`
	Value humanNameValue `json:"value"`
}

type humanNameValue struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// stringField carries a single-valued contact field (phone, email)
type stringField struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// cartItem is one order line in the CRM cart format, price in minor units
type cartItem struct {
	ItemID    int   `json:"itemId"`
	Quantity  int   `json:"quantity"`
	Variation int   `json:"variation"`
	Price     int64 `json:"price"`
}

// addOrderResponse is the envelope returned by the addOrder mutation
type addOrderResponse struct {
	Data struct {
		OrderMutation struct {
			AddOrder struct {
				ID json.Number `json:"id"`
			} `json:"addOrder"`
		} `json:"orderMutation"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// updateStatusResponse is the envelope returned by the updateStatus mutation
type updateStatusResponse struct {
	Data struct {
		OrderMutation struct {
			UpdateStatus struct {
				ID     json.Number `json:"id"`
				Status string      `json:"status"`
			} `json:"updateStatus"`
		} `json:"orderMutation"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}
