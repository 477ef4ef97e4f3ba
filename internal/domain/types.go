package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type BackupID = uuid.UUID
type AuditID = uuid.UUID
type EventID = uuid.UUID
type AttemptID = uuid.UUID
