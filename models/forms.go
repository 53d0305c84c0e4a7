// ABOUTME: HTML form inputs and their validation rules
// ABOUTME: Forms are validated before any backend request is sent

package models

import (
	"errors"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the HTML input name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	return v
}

// ValidationErrors maps an input name to the message shown beside it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation; used by templates.
func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// form is implemented by every input struct; messages maps an input name
// to the single message shown when any of its rules fail.
type form interface {
	messages() map[string]string
}

// Validate checks f against its struct tags. It returns nil when f is valid.
func Validate(f form) ValidationErrors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{"_form": err.Error()}
	}
	msgs := f.messages()
	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := msgs[field]; ok {
			out[field] = msg
		} else {
			out[field] = field + " is invalid."
		}
	}
	return out
}

const invalidEmail = "Please enter a valid email address."

type LoginForm struct {
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required"`
	RememberMe bool   `form:"rememberMe"`
}

func (LoginForm) messages() map[string]string {
	return map[string]string{
		"email":    invalidEmail,
		"password": "Password is required.",
	}
}

func ParseLoginForm(v url.Values) LoginForm {
	return LoginForm{
		Email:      strings.TrimSpace(v.Get("email")),
		Password:   v.Get("password"),
		RememberMe: checked(v, "rememberMe"),
	}
}

type RegisterForm struct {
	Name            string `form:"name" validate:"min=2"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
}

func (RegisterForm) messages() map[string]string {
	return map[string]string{
		"name":            "Name must be at least 2 characters.",
		"email":           invalidEmail,
		"password":        "Password must be at least 8 characters.",
		"confirmPassword": "Passwords do not match.",
	}
}

func ParseRegisterForm(v url.Values) RegisterForm {
	return RegisterForm{
		Name:            strings.TrimSpace(v.Get("name")),
		Email:           strings.TrimSpace(v.Get("email")),
		Password:        v.Get("password"),
		ConfirmPassword: v.Get("confirmPassword"),
	}
}

// Input converts a registration into a new active student account.
func (f RegisterForm) Input() StudentInput {
	return StudentInput{Name: f.Name, Email: f.Email, Password: f.Password, IsActive: true}
}

type CourseForm struct {
	Title       string `form:"title" validate:"min=5"`
	Description string `form:"description" validate:"min=20"`
	Category    string `form:"category" validate:"required"`
	Level       string `form:"level" validate:"required"`
	Price       string `form:"price" validate:"nonnegative"`
	Instructor  string `form:"instructor" validate:"min=3"`
	Duration    string `form:"duration" validate:"required"`
	IsPublished bool   `form:"isPublished"`
	ImageURL    string `form:"imageUrl" validate:"omitempty,url"`
}

func (CourseForm) messages() map[string]string {
	return map[string]string{
		"title":       "Title must be at least 5 characters.",
		"description": "Description must be at least 20 characters.",
		"category":    "Please select a category.",
		"level":       "Please select a level.",
		"price":       "Price must be a positive number.",
		"instructor":  "Instructor name must be at least 3 characters.",
		"duration":    "Duration is required.",
		"imageUrl":    "Image URL must be a valid URL.",
	}
}

func ParseCourseForm(v url.Values) CourseForm {
	return CourseForm{
		Title:       strings.TrimSpace(v.Get("title")),
		Description: strings.TrimSpace(v.Get("description")),
		Category:    v.Get("category"),
		Level:       v.Get("level"),
		Price:       strings.TrimSpace(v.Get("price")),
		Instructor:  strings.TrimSpace(v.Get("instructor")),
		Duration:    strings.TrimSpace(v.Get("duration")),
		IsPublished: checked(v, "isPublished"),
		ImageURL:    strings.TrimSpace(v.Get("imageUrl")),
	}
}

// CourseFormFrom pre-fills the edit form.
func CourseFormFrom(c Course) CourseForm {
	return CourseForm{
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Level:       c.Level,
		Price:       strconv.FormatFloat(c.Price, 'f', -1, 64),
		Instructor:  c.Instructor.Name,
		Duration:    c.Duration,
		IsPublished: c.IsPublished,
		ImageURL:    c.ImageURL,
	}
}

// CourseInput is the body of POST and PATCH /courses
type CourseInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Price       float64 `json:"price"`
	Instructor  string  `json:"instructor"`
	Duration    string  `json:"duration"`
	IsPublished bool    `json:"isPublished"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// Input converts a validated form into the backend payload.
func (f CourseForm) Input() CourseInput {
	price, _ := strconv.ParseFloat(f.Price, 64)
	return CourseInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Level:       f.Level,
		Price:       price,
		Instructor:  f.Instructor,
		Duration:    f.Duration,
		IsPublished: f.IsPublished,
		ImageURL:    f.ImageURL,
	}
}

type StudentForm struct {
	Name     string `form:"name" validate:"min=2"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"omitempty,min=8"`
	Bio      string `form:"bio"`
	IsActive bool   `form:"isActive"`
}

func (StudentForm) messages() map[string]string {
	return map[string]string{
		"name":     "Name must be at least 2 characters.",
		"email":    invalidEmail,
		"password": "Password must be at least 8 characters.",
	}
}

func ParseStudentForm(v url.Values) StudentForm {
	return StudentForm{
		Name:     strings.TrimSpace(v.Get("name")),
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
		Bio:      strings.TrimSpace(v.Get("bio")),
		IsActive: checked(v, "isActive"),
	}
}

func StudentFormFrom(s Student) StudentForm {
	return StudentForm{Name: s.Name, Email: s.Email, Bio: s.Bio, IsActive: s.IsActive}
}

func (f StudentForm) Input() StudentInput {
	return StudentInput{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		Bio:      f.Bio,
		IsActive: f.IsActive,
	}
}

type EnrollmentForm struct {
	StudentID string `form:"studentId" validate:"required"`
	CourseID  string `form:"courseId" validate:"required"`
}

func (EnrollmentForm) messages() map[string]string {
	return map[string]string{
		"studentId": "Please select a student.",
		"courseId":  "Please select a course.",
	}
}

func ParseEnrollmentForm(v url.Values) EnrollmentForm {
	return EnrollmentForm{StudentID: v.Get("studentId"), CourseID: v.Get("courseId")}
}

func (f EnrollmentForm) Input() EnrollmentInput {
	return EnrollmentInput{StudentID: f.StudentID, CourseID: f.CourseID}
}

type PaymentForm struct {
	CardNumber     string `form:"cardNumber" validate:"required"`
	CardHolderName string `form:"cardHolderName" validate:"required"`
	ExpiryDate     string `form:"expiryDate" validate:"required"`
	CVV            string `form:"cvv" validate:"required,numeric,min=3,max=4"`
}

func (PaymentForm) messages() map[string]string {
	return map[string]string{
		"cardNumber":     "Card number is required.",
		"cardHolderName": "Card holder name is required.",
		"expiryDate":     "Expiry date is required.",
		"cvv":            "CVV must be 3 or 4 digits.",
	}
}

func ParsePaymentForm(v url.Values) PaymentForm {
	return PaymentForm{
		CardNumber:     v.Get("cardNumber"),
		CardHolderName: v.Get("cardHolderName"),
		ExpiryDate:     v.Get("expiryDate"),
		CVV:            strings.TrimSpace(v.Get("cvv")),
	}
}

// checked reads an HTML checkbox, which is absent when unticked.
func checked(v url.Values, key string) bool {
	switch v.Get(key) {
	case "on", "true", "1":
		return true
	}
	return false
}
