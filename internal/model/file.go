// Package model defines the data structures shared by the storage, service and HTTP layers.
package model

import "time"

// File is a named piece of source code saved from the editor.
//
// Filename is the natural key: saving under an existing name replaces the code.
// Language is the tag the file runs as (python, c, java...).
type File struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
