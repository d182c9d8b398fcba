package dto

type AllocateInput struct {
	Kind string `json:"kind"`
}
