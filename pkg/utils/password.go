package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt 加盐哈希，cost 可配（<=0 用默认 10）
func HashPassword(pw string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
