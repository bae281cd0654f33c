package dto

type PlaceOrderRequest struct {
	Product   string `json:"product"`
	Variation string `json:"variation"`
	UserID    uint   `json:"userId"`
}

type CancelOrderRequest struct {
	UserID uint `json:"userId"`
}
