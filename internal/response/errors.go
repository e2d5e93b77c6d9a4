package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrNotATeacher      ErrCode = "NOT_A_TEACHER"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation        ErrCode = "VALIDATION_ERROR"
	ErrInvalidID         ErrCode = "INVALID_ID"
	ErrInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrInvalidReference  ErrCode = "INVALID_REFERENCE"
	ErrInvalidTimeRange  ErrCode = "INVALID_TIME_RANGE"
	ErrInvalidGradeBand  ErrCode = "INVALID_GRADE_BAND"
	ErrGradeBandsOverlap ErrCode = "GRADE_BANDS_OVERLAP"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrStaleVersion     ErrCode = "STALE_VERSION"
	ErrEmailExists      ErrCode = "EMAIL_EXISTS"

	// ─── Timetable-specific ────────────────────────────────────────────
	ErrScheduleConflict  ErrCode = "SCHEDULE_CONFLICT"
	ErrSessionLocked     ErrCode = "SESSION_LOCKED"
	ErrInvalidTransition ErrCode = "INVALID_STATUS_TRANSITION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrPermissionDenied:
		return "Izin ditolak."
	case ErrNotATeacher:
		return "Akun ini tidak terhubung dengan data guru."
	case ErrActionForbidden:
		return "Tindakan ini tidak diperbolehkan."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."
	case ErrInvalidReference:
		return "Kelas, guru, atau mata pelajaran yang dirujuk tidak ditemukan."
	case ErrInvalidTimeRange:
		return "Jam mulai harus lebih awal dari jam selesai."
	case ErrInvalidGradeBand:
		return "Rentang nilai tidak valid."
	case ErrGradeBandsOverlap:
		return "Rentang nilai saling tumpang tindih."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrDependencyExists:
		return "Data tidak dapat dihapus karena masih digunakan oleh data lain."
	case ErrStaleVersion:
		return "Data telah diubah oleh pengguna lain. Muat ulang lalu coba lagi."
	case ErrEmailExists:
		return "Email sudah digunakan oleh admin lain."

	// ─── Timetable-specific ────────────────────────────────────────────
	case ErrScheduleConflict:
		return "Jadwal bentrok dengan sesi lain."
	case ErrSessionLocked:
		return "Sesi jadwal ini terkunci dan tidak dapat diubah."
	case ErrInvalidTransition:
		return "Perubahan status jadwal tidak diperbolehkan."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	case ErrUnavailable:
		return "Layanan sedang tidak tersedia."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
