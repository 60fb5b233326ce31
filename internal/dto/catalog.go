package dto

// CustomerResponse represents a customer as exposed via transport layers.
type CustomerResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// CustomerRequest is the payload for creating or updating a customer.
type CustomerRequest struct {
	Name          string `json:"name"`
	Code          string `json:"code,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// ProductResponse represents a catalog product.
type ProductResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	IsActive bool   `json:"is_active"`
}

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	IsActive *bool  `json:"is_active,omitempty"`
}
