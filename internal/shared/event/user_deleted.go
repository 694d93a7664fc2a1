package event

const UserDeletedDestination string = "user.deleted"
const UserDeletedConsumerOTP string = "user_deleted_otp"

type UserDeletedMessage struct {
	UserID int64 `json:"user_id"`
}
