package esign

import "fmt"

// AgreementStatus is the remote-defined state of an agreement. The set is
// closed: values reported by the API that are not listed here fail parsing
// with UnknownStatusError instead of passing through silently.
type AgreementStatus string

// Possible status of agreements.
//
// Echosign documents both WAITING_FOR_FAXIN and WAITING_FOR_FAXING; the
// shorter spelling looks like a typo in their documentation but has not been
// confirmed either way, so both are accepted as distinct values.
const (
	StatusWaitingForMySignature       AgreementStatus = "WAITING_FOR_MY_SIGNATURE"
	StatusWaitingForMyApproval        AgreementStatus = "WAITING_FOR_MY_APPROVAL"
	StatusWaitingForMyDelegation      AgreementStatus = "WAITING_FOR_MY_DELEGATION"
	StatusWaitingForMyAcknowledgement AgreementStatus = "WAITING_FOR_MY_ACKNOWLEDGEMENT"
	StatusWaitingForMyAcceptance      AgreementStatus = "WAITING_FOR_MY_ACCEPTANCE"
	StatusWaitingForMyFormFilling     AgreementStatus = "WAITING_FOR_MY_FORM_FILLING"
	StatusOutForSignature             AgreementStatus = "OUT_FOR_SIGNATURE"
	StatusOutForApproval              AgreementStatus = "OUT_FOR_APPROVAL"
	StatusOutForDelivery              AgreementStatus = "OUT_FOR_DELIVERY"
	StatusOutForAcceptance            AgreementStatus = "OUT_FOR_ACCEPTANCE"
	StatusOutForFormFilling           AgreementStatus = "OUT_FOR_FORM_FILLING"
	StatusSigned                      AgreementStatus = "SIGNED"
	StatusApproved                    AgreementStatus = "APPROVED"
	StatusDelivered                   AgreementStatus = "DELIVERED"
	StatusAccepted                    AgreementStatus = "ACCEPTED"
	StatusFormFilled                  AgreementStatus = "FORM_FILLED"
	StatusRecalled                    AgreementStatus = "RECALLED"
	StatusWaitingForFaxin             AgreementStatus = "WAITING_FOR_FAXIN"
	StatusWaitingForFaxing            AgreementStatus = "WAITING_FOR_FAXING"
	StatusArchived                    AgreementStatus = "ARCHIVED"
	StatusForm                        AgreementStatus = "FORM"
	StatusExpired                     AgreementStatus = "EXPIRED"
	StatusWidget                      AgreementStatus = "WIDGET"
	StatusWaitingForAuthoring         AgreementStatus = "WAITING_FOR_AUTHORING"
	StatusCancelled                   AgreementStatus = "CANCELLED"
	StatusOther                       AgreementStatus = "OTHER"
)

var agreementStatuses = map[AgreementStatus]struct{}{
	StatusWaitingForMySignature:       {},
	StatusWaitingForMyApproval:        {},
	StatusWaitingForMyDelegation:      {},
	StatusWaitingForMyAcknowledgement: {},
	StatusWaitingForMyAcceptance:      {},
	StatusWaitingForMyFormFilling:     {},
	StatusOutForSignature:             {},
	StatusOutForApproval:              {},
	StatusOutForDelivery:              {},
	StatusOutForAcceptance:            {},
	StatusOutForFormFilling:           {},
	StatusSigned:                      {},
	StatusApproved:                    {},
	StatusDelivered:                   {},
	StatusAccepted:                    {},
	StatusFormFilled:                  {},
	StatusRecalled:                    {},
	StatusWaitingForFaxin:             {},
	StatusWaitingForFaxing:            {},
	StatusArchived:                    {},
	StatusForm:                        {},
	StatusExpired:                     {},
	StatusWidget:                      {},
	StatusWaitingForAuthoring:         {},
	StatusCancelled:                   {},
	StatusOther:                       {},
}

// UnknownStatusError is returned when the remote reports a status string that
// is not part of the closed AgreementStatus set.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown agreement status %q", e.Value)
}

// ParseAgreementStatus validates a status string reported by the API.
func ParseAgreementStatus(value string) (AgreementStatus, error) {
	status := AgreementStatus(value)
	if _, ok := agreementStatuses[status]; !ok {
		return "", &UnknownStatusError{Value: value}
	}
	return status, nil
}

// Valid reports whether the status is part of the closed set.
func (s AgreementStatus) Valid() bool {
	_, ok := agreementStatuses[s]
	return ok
}
