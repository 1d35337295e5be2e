package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one customer's rating of a product. Only approved reviews are
// listed and counted towards the product rating.
type Review struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product,priority:2" json:"product_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product,priority:1" json:"user_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	IsApproved bool      `gorm:"not null;default:false;index" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
