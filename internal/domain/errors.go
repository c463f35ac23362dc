package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrMissingPrerequisite  = errors.New("profile, intake or preferences missing")
	ErrCandidateNotFound    = errors.New("match candidate not found")
	ErrCandidateExists      = errors.New("match candidate already exists for this batch week")
	ErrCandidateResolved    = errors.New("match candidate is no longer pending")
	ErrConsentNotAllowed    = errors.New("user is not a party to this candidate")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationExists   = errors.New("conversation already exists for this pair")
	ErrInvalidTransition    = errors.New("invalid candidate status transition")
	ErrInvalidToken         = errors.New("invalid token")
)
