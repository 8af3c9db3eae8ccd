package dto

// CreateCategoryRequestBody defines a request body for CreateCategory service.
type CreateCategoryRequestBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateCategoryRequestBody defines a request body for UpdateCategory service.
type UpdateCategoryRequestBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
