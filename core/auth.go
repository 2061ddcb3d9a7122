package core

// SignUpInput contains the data needed to register a new user
type SignUpInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,max=128"`
	DisplayName string `json:"displayName,omitempty" validate:"max=128"`
}

// SignInInput contains the credentials for authentication
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResult contains the authenticated user and their session
type SignInResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token"` // The raw token (not the hash)
}

// SeedResult reports what a bootstrap run changed.
type SeedResult struct {
	Message     string   `json:"message"`
	Email       string   `json:"email"`
	UserCreated bool     `json:"userCreated"`
	Categories  []string `json:"categories"`
	Created     []string `json:"created"`
}
