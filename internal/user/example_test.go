package user_test

import (
	"fmt"

	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

func ExampleNormalizeEmail() {
	fmt.Println(user.NormalizeEmail("  Alice@Example.COM "))

	// Output:
	// alice@example.com
}

func ExampleUser_Public() {
	usr := &user.User{
		ID:           "5b0c7f0e-2f8a-4a43-9a7e-0d6c2c7b1a11",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$...",
	}

	fmt.Printf("%+v\n", usr.Public())

	// Output:
	// {ID:5b0c7f0e-2f8a-4a43-9a7e-0d6c2c7b1a11 Name:Alice Email:alice@example.com}
}
