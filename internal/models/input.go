package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a category or bookmark does not exist
	ErrNotFound = errors.New("not found")
	// ErrValidation is wrapped by every *ValidationError
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}

// CategoryInput is the create/edit payload for a category
type CategoryInput struct {
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility,omitempty"`
}

// Validate checks required fields
func (in CategoryInput) Validate() error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	if !in.Visibility.Valid() {
		return &ValidationError{Field: "visibility", Message: fmt.Sprintf("unknown value %q", in.Visibility)}
	}
	return nil
}

// BookmarkInput is the create/edit payload for a bookmark
type BookmarkInput struct {
	CategoryID  string `json:"categoryId"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
}

// Validate checks required fields
func (in BookmarkInput) Validate() error {
	if err := required("categoryId", in.CategoryID); err != nil {
		return err
	}
	if err := required("title", in.Title); err != nil {
		return err
	}
	return required("url", in.URL)
}
