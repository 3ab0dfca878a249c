package header

import (
	"errors"
	"fmt"

	"storefront/internal/usecase/processor"
)

const (
	msgApplied         = "Pengaturan header berhasil diterapkan!"
	msgReset           = "Pengaturan header berhasil direset!"
	MsgSaveFailed      = "Gagal menyimpan pengaturan. Storage mungkin penuh."
	msgUnsupported     = "Format file tidak didukung. Gunakan JPG, PNG, atau WebP."
	msgTooLargeFmt     = "Ukuran file terlalu besar. Maksimal %sMB."
	msgProcessFailed   = "Gambar tidak dapat diproses. Coba file lain."
	msgBackgroundReady = "Background header berhasil diunggah."
	msgLogoReady       = "Logo berhasil diunggah."
)

// UploadErrorMessage turns a pipeline error into the message shown to the user.
func UploadErrorMessage(err error) string {
	var tooLarge *processor.FileTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return fmt.Sprintf(msgTooLargeFmt, tooLarge.LimitMB())
	case errors.Is(err, processor.ErrUnsupportedFormat):
		return msgUnsupported
	default:
		return msgProcessFailed
	}
}
