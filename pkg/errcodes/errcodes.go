package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	DealNotFound        failure.ErrorCode = "DealNotFound"
	InvalidDealID       failure.ErrorCode = "InvalidDealID"
	InvalidDeal         failure.ErrorCode = "InvalidDeal"        // malformed definition rejected at write time
	DealExhausted       failure.ErrorCode = "DealExhausted"      // usage cap reached, "deal no longer available"
	InvalidOrderContext failure.ErrorCode = "InvalidOrderContext"
	InvalidBranchID     failure.ErrorCode = "InvalidBranchID"
	InvalidCustomerID   failure.ErrorCode = "InvalidCustomerID"
	InvalidItemID       failure.ErrorCode = "InvalidItemID"
	InvalidTimeWindow   failure.ErrorCode = "InvalidTimeWindow"
	InvalidDaysOfWeek   failure.ErrorCode = "InvalidDaysOfWeek"
	InvalidDealType     failure.ErrorCode = "InvalidDealType"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"
)
