package event

const OTPIssuedDestination string = "otp.issued"
const OTPVerifiedDestination string = "otp.verified"
const OTPExpiredDestination string = "otp.expired"

// OTPLifecycleMessage never carries the code itself.
type OTPLifecycleMessage struct {
	OTPID       int64  `json:"otp_id,string"`
	OwnerID     int64  `json:"owner_id"`
	OperationID string `json:"operation_id"`
	Channel     string `json:"channel,omitempty"`
	At          string `json:"at"`
}
