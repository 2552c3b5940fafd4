package domain

type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type Brand struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}
