package utils

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/khanhvo/lms-tracking-backend/logger"
	"github.com/khanhvo/lms-tracking-backend/services"
)

// StartSweepJob chạy sweep phiên bỏ rơi định kỳ, để bất biến "một phiên active"
// tự lành sau crash. Chạy một lần ngay lúc khởi động rồi theo lịch.
func StartSweepJob(sessions *services.SessionService, log *logger.Logger) *cron.Cron {
	sweep := func() {
		if _, err := sessions.SweepAbandoned(context.Background()); err != nil {
			log.Error("sweep phiên bỏ rơi thất bại", "error", err)
		}
	}

	log.Info("chạy sweep lần đầu lúc khởi động")
	sweep()

	c := cron.New()
	// Mỗi 30 phút một lần là đủ, timeout phiên tính bằng giờ
	if _, err := c.AddFunc("@every 30m", sweep); err != nil {
		log.Fatal("không đăng ký được sweep job", "error", err)
	}
	c.Start()

	log.Info("sweep job đã khởi động (mỗi 30 phút)")
	return c
}
