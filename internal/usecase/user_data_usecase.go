package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// メール送信の約束（SendGrid など）
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// データロガーの受け口。保存・CSV出力・メール通知。
type UserDataUsecase struct {
	dataRepo  repo.UserDataRepository
	mailer    Mailer
	recipient string
	logger    *slog.Logger
	now       func() time.Time
}

// mailer が nil ならメールはログに出すだけ
func NewUserDataUsecase(
	dataRepo repo.UserDataRepository,
	mailer Mailer,
	recipient string,
	logger *slog.Logger,
	now func() time.Time,
) *UserDataUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &UserDataUsecase{
		dataRepo:  dataRepo,
		mailer:    mailer,
		recipient: recipient,
		logger:    logger,
		now:       now,
	}
}

type SaveUserDataInput struct {
	Type      string
	Data      json.RawMessage
	Timestamp time.Time
	SessionID string
	IP        string
	UserAgent string
}

func (u *UserDataUsecase) Save(ctx context.Context, in SaveUserDataInput) error {
	recordType := strings.TrimSpace(in.Type)
	if recordType == "" {
		return NewHTTPError(http.StatusBadRequest, "type required")
	}
	if len(in.Data) == 0 || !json.Valid(in.Data) {
		return NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = u.now()
	}

	if err := u.dataRepo.Append(ctx, model.UserDataRecord{
		Type:      recordType,
		Data:      in.Data,
		Timestamp: ts,
		SessionID: in.SessionID,
		IP:        in.IP,
		UserAgent: in.UserAgent,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "failed to save data")
	}
	return nil
}

var csvHeader = []string{"type", "timestamp", "sessionId", "ip", "userAgent", "data"}

// 保存済みデータをCSVで書き出す。recordType が空なら全部。
func (u *UserDataUsecase) ExportCSV(ctx context.Context, recordType string, w io.Writer) error {
	records, err := u.dataRepo.List(ctx, strings.TrimSpace(recordType))
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "failed to generate download")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{
			rec.Type,
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.SessionID,
			rec.IP,
			rec.UserAgent,
			string(rec.Data),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ダウンロード時のファイル名
func (u *UserDataUsecase) ExportFilename(recordType string) string {
	if recordType == "" {
		recordType = "all"
	}
	return fmt.Sprintf("user-data-%s-%s.csv", recordType, u.now().UTC().Format("2006-01-02"))
}

type EmailUserDataInput struct {
	Type string
	Data json.RawMessage
	IP   string
}

func (u *UserDataUsecase) Email(ctx context.Context, in EmailUserDataInput) error {
	if strings.TrimSpace(in.Type) == "" {
		return NewHTTPError(http.StatusBadRequest, "type required")
	}

	ip := in.IP
	if ip == "" {
		ip = "unknown"
	}

	pretty := string(in.Data)
	var v any
	if err := json.Unmarshal(in.Data, &v); err == nil {
		if b, err := json.MarshalIndent(v, "", "  "); err == nil {
			pretty = string(b)
		}
	}

	subject := "New User Data - " + in.Type
	body := fmt.Sprintf("Type: %s\nTimestamp: %s\nIP Address: %s\n\nUser Details:\n%s\n",
		in.Type, u.now().UTC().Format(time.RFC3339), ip, pretty)

	if u.mailer == nil || u.recipient == "" {
		u.logger.Info("user data to be emailed", "subject", subject, "type", in.Type)
		return nil
	}

	if err := u.mailer.Send(ctx, u.recipient, subject, body); err != nil {
		u.logger.Error("email user data failed", "type", in.Type, "error", err)
		return NewHTTPError(http.StatusBadGateway, "failed to send mail")
	}
	return nil
}
