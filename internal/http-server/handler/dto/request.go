package dto

type ColorRequest struct {
	Color string `json:"color" validate:"required,hexcolor"`
}

type FormRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

type FieldRequest struct {
	Value string `json:"value"`
}

type OrdersRequest struct {
	Status string `validate:"omitempty,oneof=all pending processing completed cancelled"`
	Query  string `validate:"max=100"`
	From   string `validate:"omitempty,datetime=2006-01-02"`
	To     string `validate:"omitempty,datetime=2006-01-02"`
}
