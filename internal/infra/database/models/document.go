package models

import (
	"time"
)

// Document is one record of a named collection, body stored as jsonb.
type Document struct {
	Collection string    `json:"collection" gorm:"primaryKey;type:text"`
	DocID      string    `json:"docId" gorm:"primaryKey;type:text;column:doc_id"`
	Data       string    `json:"data" gorm:"type:jsonb;not null;default:'{}'"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate      time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
