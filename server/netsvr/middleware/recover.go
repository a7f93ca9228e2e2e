package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// Recover 把 handler panic 轉成 500。輸入造成的錯誤應該在 dto 驗證層
// 就擋下成 400；走到這裡的一律視為伺服端缺陷。
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}
