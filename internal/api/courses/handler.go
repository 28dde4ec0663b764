package courses

import (
	"net/http"
	"time"

	"learning-platform/database"
	"learning-platform/internal/domain/courses"

	"github.com/gin-gonic/gin"
)

type CourseResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Instructor      string    `json:"instructor"`
	PriceJPY        int64     `json:"price_jpy"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	SeatsLeft       int       `json:"seats_left"`
	IsFull          bool      `json:"is_full"`
}

func toCourseResponse(c *courses.LiveCourse) CourseResponse {
	seatsLeft := 0
	full := false
	if c.MaxParticipants > 0 {
		seatsLeft = c.MaxParticipants - c.CurrentParticipants
		if seatsLeft <= 0 {
			seatsLeft = 0
			full = true
		}
	}
	return CourseResponse{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Instructor:      c.Instructor,
		PriceJPY:        c.PriceJPY,
		StartsAt:        c.StartsAt,
		DurationMinutes: c.DurationMinutes,
		SeatsLeft:       seatsLeft,
		IsFull:          full,
	}
}

// ListCourses returns published upcoming seminars, soonest first.
func ListCourses(c *gin.Context) {
	var list []courses.LiveCourse
	if err := database.DB.
		Where("is_published = ? AND starts_at > ?", true, time.Now()).
		Order("starts_at ASC").
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courses"})
		return
	}

	out := make([]CourseResponse, 0, len(list))
	for i := range list {
		out = append(out, toCourseResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func GetCourse(c *gin.Context) {
	var course courses.LiveCourse
	if err := database.DB.
		Where("id = ? AND is_published = ?", c.Param("id"), true).
		First(&course).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, toCourseResponse(&course))
}

// ListMyRegistrations returns the caller's registrations with course details,
// including the Zoom join URL for confirmed ones.
func ListMyRegistrations(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var regs []courses.Registration
	if err := database.DB.
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&regs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load registrations"})
		return
	}

	type regResponse struct {
		ID                uint       `json:"id"`
		Status            string     `json:"status"`
		Attendance        string     `json:"attendance"`
		AllocatedAmount   int64      `json:"allocated_amount"`
		AllocatedDiscount int64      `json:"allocated_discount"`
		Course            CourseResponse `json:"course"`
		ZoomJoinURL       *string    `json:"zoom_join_url,omitempty"`
	}

	out := make([]regResponse, 0, len(regs))
	for i := range regs {
		r := regResponse{
			ID:                regs[i].ID,
			Status:            regs[i].Status,
			Attendance:        regs[i].Attendance,
			AllocatedAmount:   regs[i].AllocatedAmount,
			AllocatedDiscount: regs[i].AllocatedDiscount,
			Course:            toCourseResponse(&regs[i].Course),
		}
		if regs[i].Status == courses.RegStatusConfirmed {
			r.ZoomJoinURL = regs[i].Course.ZoomJoinURL
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}

type courseInput struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	Instructor      string    `json:"instructor"`
	PriceJPY        int64     `json:"price_jpy"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxParticipants int       `json:"max_participants"`
	ZoomJoinURL     *string   `json:"zoom_join_url"`
	IsPublished     bool      `json:"is_published"`
}

// CreateCourse is admin-only (guarded in routes).
func CreateCourse(c *gin.Context) {
	var input courseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := courses.LiveCourse{
		Title:           input.Title,
		Description:     input.Description,
		Instructor:      input.Instructor,
		PriceJPY:        input.PriceJPY,
		StartsAt:        input.StartsAt,
		DurationMinutes: input.DurationMinutes,
		MaxParticipants: input.MaxParticipants,
		ZoomJoinURL:     input.ZoomJoinURL,
		IsPublished:     input.IsPublished,
	}
	if err := database.DB.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, toCourseResponse(&course))
}

func UpdateCourse(c *gin.Context) {
	var course courses.LiveCourse
	if err := database.DB.Where("id = ?", c.Param("id")).First(&course).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	var input courseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course.Title = input.Title
	course.Description = input.Description
	course.Instructor = input.Instructor
	course.PriceJPY = input.PriceJPY
	course.StartsAt = input.StartsAt
	course.DurationMinutes = input.DurationMinutes
	course.MaxParticipants = input.MaxParticipants
	course.ZoomJoinURL = input.ZoomJoinURL
	course.IsPublished = input.IsPublished

	if err := database.DB.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
		return
	}

	c.JSON(http.StatusOK, toCourseResponse(&course))
}
