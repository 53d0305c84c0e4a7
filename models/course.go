// ABOUTME: Course catalog models
// ABOUTME: Mirrors the backend course document including curriculum and reviews

package models

import (
	"encoding/json"

	"github.com/gosimple/slug"
)

const (
	StatusPublished = "Published"
	StatusDraft     = "Draft"
)

// Categories and Levels offered by the course form
var (
	Categories = []string{"Development", "Design", "Data Science", "Business", "Marketing"}
	Levels     = []string{"Beginner", "Intermediate", "Advanced", "All Levels"}
)

// Instructor is sent by the backend either as a bare name or as an object.
type Instructor struct {
	Name   string `json:"name"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func (i *Instructor) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &i.Name)
	}
	if string(data) == "null" {
		return nil
	}
	type Alias Instructor
	return json.Unmarshal(data, (*Alias)(i))
}

func (i Instructor) String() string {
	return i.Name
}

type Lecture struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type CurriculumSection struct {
	Title    string    `json:"title"`
	Lectures []Lecture `json:"lectures"`
}

type Review struct {
	ID      string  `json:"_id"`
	User    string  `json:"user"`
	Rating  float64 `json:"rating"`
	Date    string  `json:"date"`
	Comment string  `json:"comment"`
}

type Course struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	LongDescription  string              `json:"longDescription,omitempty"`
	Category         string              `json:"category"`
	Level            string              `json:"level"`
	Price            float64             `json:"price"`
	Instructor       Instructor          `json:"instructor"`
	Rating           float64             `json:"rating"`
	Students         int                 `json:"students"`
	Duration         string              `json:"duration"`
	Lectures         int                 `json:"lectures"`
	LastUpdated      string              `json:"lastUpdated,omitempty"`
	ImageURL         string              `json:"imageUrl,omitempty"`
	IsPublished      bool                `json:"isPublished"`
	WhatYouWillLearn []string            `json:"whatYouWillLearn,omitempty"`
	Curriculum       []CurriculumSection `json:"curriculum,omitempty"`
	Reviews          []Review            `json:"reviews,omitempty"`
}

func (c *Course) UnmarshalJSON(data []byte) error {
	type Alias Course
	aux := struct {
		*Alias
		MongoID flexID `json:"_id"`
		ID      flexID `json:"id"`
	}{Alias: (*Alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = pickID(aux.MongoID, aux.ID)
	return nil
}

// Status is the admin-facing publication label.
func (c Course) Status() string {
	if c.IsPublished {
		return StatusPublished
	}
	return StatusDraft
}

// LectureCount totals lectures across curriculum sections, falling back to
// the backend's own counter when no curriculum was sent.
func (c Course) LectureCount() int {
	if len(c.Curriculum) == 0 {
		return c.Lectures
	}
	n := 0
	for _, s := range c.Curriculum {
		n += len(s.Lectures)
	}
	return n
}

// CategorySlug is the lowercase hyphenated category used by catalog filter links.
func (c Course) CategorySlug() string {
	return slug.Make(c.Category)
}

