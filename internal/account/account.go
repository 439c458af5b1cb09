package account

import (
	"strings"
	"time"
)

// Account 是 accounts 表的 GORM 模型（运营后台/司机端登录账号）。
type Account struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	PasswordSalt string    `gorm:"size:64;not null" json:"-"`
	Nickname     string    `gorm:"size:64" json:"nickname"`
	Phone        string    `gorm:"size:32" json:"phone"`
	Email        string    `gorm:"size:128" json:"email"`
	Roles        string    `gorm:"size:256;not null" json:"roles"` // 逗号分隔，例如 "dispatcher,admin"
	DriverID     string    `gorm:"index;size:36" json:"driverId"`  // 司机账号绑定的司机档案
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a Account) RolesSlice() []string {
	if strings.TrimSpace(a.Roles) == "" {
		return nil
	}
	parts := strings.Split(a.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func RolesJoin(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return strings.Join(out, ",")
}
