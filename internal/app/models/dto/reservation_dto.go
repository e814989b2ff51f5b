package dto

import "strings"

// ReservationForm is shared by create and edit.
type ReservationForm struct {
	ClassName    string `form:"class_name" binding:"required,notblank,max=100"`
	ReservedDate string `form:"reserved_date" binding:"required,datetime=2006-01-02"`
	ReservedTime string `form:"reserved_time" binding:"required,notblank,max=20"`
}

func (f *ReservationForm) Normalize() {
	f.ClassName = strings.TrimSpace(f.ClassName)
	f.ReservedDate = strings.TrimSpace(f.ReservedDate)
	f.ReservedTime = strings.TrimSpace(f.ReservedTime)
}
