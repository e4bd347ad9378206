package domain

import "errors"

var (
	ErrInvalidInput             = errors.New("invalid_input")
	ErrEmptyInvoice             = errors.New("empty_invoice")
	ErrEncodingCapacityExceeded = errors.New("encoding_capacity_exceeded")
	ErrIOFailure                = errors.New("io_failure")
	ErrInvoiceCollision         = errors.New("invoice_collision")
)
