package domain

// Testimonial is a quote shown on the landing page.
type Testimonial struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required,max=120"`
	Role     string `json:"role" validate:"required,max=120"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}
