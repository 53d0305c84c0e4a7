// ABOUTME: Public course catalog with a short-TTL shared cache
// ABOUTME: Serves anonymous course reads and invalidates them when admins mutate courses

package services

import (
	"context"
	"time"

	"github.com/MohamedIjlal27/LMS/cache"
	"github.com/MohamedIjlal27/LMS/models"
)

const catalogListKey = "catalog:courses"

func catalogCourseKey(id string) string {
	return "catalog:course:" + id
}

type Catalog struct {
	api   *APIClient
	store cache.Store
	ttl   time.Duration
}

func NewCatalog(api *APIClient, store cache.Store, ttl time.Duration) *Catalog {
	return &Catalog{api: api, store: store, ttl: ttl}
}

// Courses returns the published courses, from cache when fresh.
func (c *Catalog) Courses(ctx context.Context) ([]models.Course, error) {
	if courses, ok := cache.GetJSON[[]models.Course](ctx, c.store, catalogListKey); ok {
		return courses, nil
	}
	all, err := c.api.ListCourses(ctx, "")
	if err != nil {
		return nil, err
	}
	published := make([]models.Course, 0, len(all))
	for _, course := range all {
		if course.IsPublished {
			published = append(published, course)
		}
	}
	cache.SetJSON(ctx, c.store, catalogListKey, published, c.ttl)
	return published, nil
}

// Course returns a single course for the public detail page.
func (c *Catalog) Course(ctx context.Context, id string) (models.Course, error) {
	if err := ValidateID(id); err != nil {
		return models.Course{}, err
	}
	key := catalogCourseKey(id)
	if course, ok := cache.GetJSON[models.Course](ctx, c.store, key); ok {
		return course, nil
	}
	course, err := c.api.GetCourse(ctx, "", id)
	if err != nil {
		return models.Course{}, err
	}
	cache.SetJSON(ctx, c.store, key, course, c.ttl)
	return course, nil
}

// Featured returns up to n published courses for the home page.
func (c *Catalog) Featured(ctx context.Context, n int) ([]models.Course, error) {
	courses, err := c.Courses(ctx)
	if err != nil {
		return nil, err
	}
	if len(courses) > n {
		courses = courses[:n]
	}
	return courses, nil
}

// Invalidate drops the list and, when id is set, that course's entry.
func (c *Catalog) Invalidate(ctx context.Context, id string) {
	keys := []string{catalogListKey}
	if id != "" {
		keys = append(keys, catalogCourseKey(id))
	}
	c.store.Delete(ctx, keys...)
}
