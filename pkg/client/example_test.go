package client_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pratik-mahalle/mediremind/pkg/client"
)

// Example demonstrates basic usage of the MediRemind client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.mediremind.app",
	})

	ctx := context.Background()

	loginResp, err := c.Login(ctx, "patient@example.com", "secret1")
	if err != nil {
		log.Fatal(err)
	}

	me, err := c.GetCurrentUser(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Logged in as %s (token %d bytes)\n", me.Name, len(loginResp.Token))
}

// ExampleClient_Register demonstrates creating an account and reading the
// server supplied failure message
func ExampleClient_Register() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.mediremind.app",
	})

	_, err := c.Register(context.Background(), client.RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "secret1",
		Phone:    "+1234567890",
		Role:     client.RoleCaregiver,
	})

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.IsConflict() {
		fmt.Println(apiErr.Message)
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Registered, please log in")
}
