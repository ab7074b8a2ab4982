package usecase

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// 認証は外部。ここでは「誰か（またはゲスト）」と「管理者か」だけを受け取る
type Identity struct {
	UserID int64
	Role   string
}

func Guest() Identity {
	return Identity{}
}

func (i Identity) IsGuest() bool {
	return i.UserID <= 0
}

func (i Identity) IsAdmin() bool {
	return !i.IsGuest() && i.Role == RoleAdmin
}

// 注文に紐づける顧客ID。ゲストと管理者はnull
func (i Identity) CustomerID() *int64 {
	if i.IsGuest() || i.IsAdmin() {
		return nil
	}
	id := i.UserID
	return &id
}
