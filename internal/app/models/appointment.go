package models

// Appointment is the read-only appointment record loaded for a flow.
type Appointment struct {
	ID      int64   `json:"id" bson:"id"`
	Date    string  `json:"date" bson:"date"`
	Time    string  `json:"time" bson:"time"`
	Status  string  `json:"status" bson:"status"`
	Patient Patient `json:"patient" bson:"patient"`
}

// Patient is the snapshot embedded in an appointment.
type Patient struct {
	ID          int64  `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	Phone       string `json:"phone" bson:"phone"`
	DateOfBirth string `json:"date_of_birth" bson:"date_of_birth"`
	Gender      string `json:"gender" bson:"gender"`
	Address     string `json:"address" bson:"address"`
}
