package request

// OpenOrderRequest represents an open order request
type OpenOrderRequest struct {
	TableRef string `json:"table_ref" binding:"required,max=50"`
	Note     string `json:"note" binding:"omitempty,max=1000"`
}

// AddItemRequest represents an add item request
type AddItemRequest struct {
	DishID   string `json:"dish_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=999"`
}

// TransitionItemRequest moves an item along the preparation flow
type TransitionItemRequest struct {
	Status string `json:"status" binding:"required"`
}
