// Package model defines domain entities for the application.
package model

import "time"

// StatusCheck is a liveness record identifying a calling client and
// when it checked in.
type StatusCheck struct {
	ID         string    `json:"id" bson:"_id"`
	ClientName string    `json:"client_name" bson:"client_name"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}

// MaxStatusChecks bounds the number of status checks returned by a list.
const MaxStatusChecks = 1000
