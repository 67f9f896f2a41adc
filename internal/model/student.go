package model

import "time"

// Student represents a registered member who can book seats. The Type
// field is the category code checked against Room.Type by the
// eligibility rule. This struct corresponds to a row in the `students`
// table.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name.
//  StudentID    – institutional student number.
//  Email        – contact email.
//  Phone        – contact phone number.
//  Type         – category code used by room eligibility.
//  Role         – authorization role (STUDENT or ADMIN).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Student struct {
    ID           uint64    // students.id
    Username     string    // students.username
    PasswordHash string    // students.password_hash
    Name         string    // students.name
    StudentID    string    // students.student_id
    Email        string    // students.email
    Phone        string    // students.phone
    Type         uint8     // students.type
    Role         string    // students.role
    CreatedAt    time.Time // students.created_at
    UpdatedAt    time.Time // students.updated_at
}
