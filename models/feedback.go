package models

import "time"

// FeedbackTypes lists the values accepted by the form, in display order.
var FeedbackTypes = []string{"general", "suggestion", "resources", "therapist", "technical"}

// FeedbackTypeLabels are the option texts shown for FeedbackTypes.
var FeedbackTypeLabels = map[string]string{
	"general":    "General Feedback",
	"suggestion": "Suggestion",
	"resources":  "Resource Recommendations",
	"therapist":  "Therapist Experience",
	"technical":  "Technical Issue",
}

// Feedback is a message left through the feedback form.
type Feedback struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name" form:"name" binding:"required,max=200"`
	Email     string    `bson:"email" json:"email" form:"email" binding:"required,email"`
	Type      string    `bson:"type" json:"type" form:"type" binding:"omitempty,oneof=general suggestion resources therapist technical"`
	Message   string    `bson:"message" json:"message" form:"message" binding:"required,max=5000"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
