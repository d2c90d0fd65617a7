package common

import uuid "github.com/satori/go.uuid"

func uuidString() string {
	return uuid.NewV4().String()
}
