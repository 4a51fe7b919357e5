package gateway

import (
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// Document field names shared by every backend.
const (
	FieldAccountID    = "accountId"
	FieldEmail        = "email"
	FieldStudentID    = "studentID"
	FieldAvatar       = "avatar"
	FieldFullName     = "fullName"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldDate         = "date"
	FieldLocation     = "location"
	FieldCapacity     = "capacity"
	FieldImage        = "image"
	FieldGAPoint      = "gaPoint"
	FieldUserID       = "userId"
	FieldEventID      = "eventId"
	FieldEventTitle   = "eventTitle"
	FieldEventImage   = "eventImage"
	FieldEventDate    = "eventDate"
	FieldEventLoc     = "eventLocation"
	FieldBookingDate  = "bookingDate"
	FieldStatus       = "status"
	FieldScoreStudent = "studentId"
	FieldRole         = "role"
	FieldLevel        = "level"
	FieldTotalScore   = "totalScore"
	FieldDateAwarded  = "dateAwarded"
	FieldThumbnail    = "thumbnail"
	FieldVideo        = "video"
	FieldCreator      = "creator"
)

// GAField is the document field of rubric dimension i (0-based).
func GAField(i int) string {
	return fmt.Sprintf("ga%d", i+1)
}

// UserFields encodes u without its ID.
func UserFields(u model.User) Fields {
	return Fields{
		FieldAccountID: u.AccountID,
		FieldEmail:     u.Email,
		FieldStudentID: u.StudentID,
		FieldAvatar:    u.Avatar,
		FieldFullName:  u.FullName,
		FieldPhone:     u.Phone,
		FieldAddress:   u.Address,
	}
}

// DecodeUser maps a users document.
func DecodeUser(d Document) model.User {
	return model.User{
		ID:        d.ID,
		AccountID: d.Fields.String(FieldAccountID),
		StudentID: d.Fields.String(FieldStudentID),
		Email:     d.Fields.String(FieldEmail),
		FullName:  d.Fields.String(FieldFullName),
		Phone:     d.Fields.String(FieldPhone),
		Address:   d.Fields.String(FieldAddress),
		Avatar:    d.Fields.String(FieldAvatar),
	}
}

// EventFields encodes e without its ID and creation time.
func EventFields(e model.Event) Fields {
	return Fields{
		FieldTitle:       e.Title,
		FieldDescription: e.Description,
		FieldDate:        FormatTime(e.Date),
		FieldLocation:    e.Location,
		FieldCapacity:    e.Capacity,
		FieldImage:       e.Image,
		FieldGAPoint:     string(e.GAPoint),
	}
}

// DecodeEvent maps an events document.
func DecodeEvent(d Document) model.Event {
	return model.Event{
		ID:          d.ID,
		Title:       d.Fields.String(FieldTitle),
		Description: d.Fields.String(FieldDescription),
		Date:        d.Fields.Time(FieldDate),
		Location:    d.Fields.String(FieldLocation),
		Capacity:    d.Fields.Int(FieldCapacity),
		GAPoint:     model.GAPoint(d.Fields.String(FieldGAPoint)),
		Image:       d.Fields.String(FieldImage),
		CreatedAt:   d.CreatedAt,
	}
}

// BookingFields encodes b without its ID.
func BookingFields(b model.Booking) Fields {
	return Fields{
		FieldUserID:      b.UserID,
		FieldEventID:     b.EventID,
		FieldEventTitle:  b.EventTitle,
		FieldEventImage:  b.EventImage,
		FieldEventDate:   FormatTime(b.EventDate),
		FieldEventLoc:    b.EventLocation,
		FieldCapacity:    b.Capacity,
		FieldGAPoint:     string(b.GAPoint),
		FieldStatus:      b.Status,
		FieldBookingDate: FormatTime(b.BookingDate),
	}
}

// DecodeBooking maps a bookings document. Missing status reads as confirmed.
func DecodeBooking(d Document) model.Booking {
	b := model.Booking{
		ID:            d.ID,
		UserID:        d.Fields.String(FieldUserID),
		EventID:       d.Fields.String(FieldEventID),
		EventTitle:    d.Fields.String(FieldEventTitle),
		EventImage:    d.Fields.String(FieldEventImage),
		EventDate:     d.Fields.Time(FieldEventDate),
		EventLocation: d.Fields.String(FieldEventLoc),
		Capacity:      d.Fields.Int(FieldCapacity),
		GAPoint:       model.GAPoint(d.Fields.String(FieldGAPoint)),
		Status:        d.Fields.String(FieldStatus),
		BookingDate:   d.Fields.Time(FieldBookingDate),
		CreatedAt:     d.CreatedAt,
	}
	if b.Status == "" {
		b.Status = model.BookingStatusConfirmed
	}
	if b.EventDate.IsZero() {
		b.EventDate = d.CreatedAt
	}
	return b
}

// ScoreFields encodes s without its ID.
func ScoreFields(s model.ActivityScore) Fields {
	f := Fields{
		FieldEventID:      s.EventID,
		FieldEventTitle:   s.EventTitle,
		FieldAccountID:    s.AccountID,
		FieldScoreStudent: s.StudentID,
		FieldRole:         s.Role,
		FieldLevel:        s.Level,
		FieldTotalScore:   s.TotalScore,
		FieldDateAwarded:  FormatTime(s.DateAwarded),
	}
	for i, v := range s.GA {
		f[GAField(i)] = v
	}
	return f
}

// DecodeScore maps an activity score document.
func DecodeScore(d Document) model.ActivityScore {
	s := model.ActivityScore{
		ID:          d.ID,
		EventID:     d.Fields.String(FieldEventID),
		EventTitle:  d.Fields.String(FieldEventTitle),
		AccountID:   d.Fields.String(FieldAccountID),
		StudentID:   d.Fields.String(FieldScoreStudent),
		Role:        d.Fields.String(FieldRole),
		Level:       d.Fields.Int(FieldLevel),
		TotalScore:  d.Fields.Int(FieldTotalScore),
		DateAwarded: d.Fields.Time(FieldDateAwarded),
	}
	for i := range s.GA {
		s.GA[i] = d.Fields.Int(GAField(i))
	}
	return s
}

// DecodeVideo maps a videos document.
func DecodeVideo(d Document) model.Video {
	return model.Video{
		ID:        d.ID,
		Title:     d.Fields.String(FieldTitle),
		Thumbnail: d.Fields.String(FieldThumbnail),
		VideoURL:  d.Fields.String(FieldVideo),
		CreatorID: d.Fields.String(FieldCreator),
		CreatedAt: d.CreatedAt,
	}
}
