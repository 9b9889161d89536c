package models

// 角色常量
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 后端用户实体
type User struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	PhoneNumber    string  `json:"phoneNumber"`
	MobileNumber   string  `json:"mobileNumber"`
	HomeAddress    Address `json:"homeAddress"`
	BillingAddress Address `json:"billingAddress"`
}

// LicenseFile 驾照扫描件信息
type LicenseFile struct {
	Name       string `json:"name"`
	UploadDate string `json:"uploadDate"`
}

// UserProfile 个人资料视图状态
type UserProfile struct {
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Email          string      `json:"email"`
	PhoneNumber    string      `json:"phoneNumber"`
	ProfilePicture string      `json:"profilePicture"`
	MemberSince    string      `json:"memberSince"`
	LicenseFile    LicenseFile `json:"licenseFile"`
	HomeAddress    Address     `json:"homeAddress"`
	BillingAddress Address     `json:"billingAddress"`
}

// UserProfilePatch 个人资料的部分更新，nil 字段保持不变
type UserProfilePatch struct {
	FirstName      *string      `json:"firstName,omitempty"`
	LastName       *string      `json:"lastName,omitempty"`
	Email          *string      `json:"email,omitempty"`
	PhoneNumber    *string      `json:"phoneNumber,omitempty"`
	ProfilePicture *string      `json:"profilePicture,omitempty"`
	MemberSince    *string      `json:"memberSince,omitempty"`
	LicenseFile    *LicenseFile `json:"licenseFile,omitempty"`
	HomeAddress    *Address     `json:"homeAddress,omitempty"`
	BillingAddress *Address     `json:"billingAddress,omitempty"`
}
