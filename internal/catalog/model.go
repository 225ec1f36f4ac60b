package catalog

type CreateActivityRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Duration     int    `json:"duration" validate:"required,gt=0"`
	Price        string `json:"price" validate:"required,price"`
	Location     string `json:"location" validate:"required"`
	ManagerName  string `json:"managerName" validate:"required"`
	ManagerEmail string `json:"managerEmail" validate:"required,email"`
}

type UpdateActivityRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Duration     int    `json:"duration" validate:"required,gt=0"`
	Price        string `json:"price" validate:"required,price"`
	Location     string `json:"location" validate:"required"`
	ManagerName  string `json:"managerName" validate:"required"`
	ManagerEmail string `json:"managerEmail" validate:"required,email"`
}

// DeleteActivityRequest carries the caller's own password; deletion is gated
// on re-entering it.
type DeleteActivityRequest struct {
	Password string `json:"password" validate:"required"`
}
