package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	FromAddress     string
	FromName        string
}

type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESNotifier struct {
	client sendEmailAPI
	source string
	log    *slog.Logger
}

func NewSESNotifier(cfg SESConfig, log *slog.Logger) *SESNotifier {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	}

	source := cfg.FromAddress
	if cfg.FromName != "" {
		source = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	if log == nil {
		log = slog.Default()
	}

	return &SESNotifier{
		client: ses.NewFromConfig(awsCfg),
		source: source,
		log:    log,
	}
}

func (n *SESNotifier) SendBookingConfirmation(ctx context.Context, in BookingConfirmation) error {
	subject, text := renderConfirmation(in)

	out, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.source),
		Destination: &types.Destination{
			ToAddresses: []string{in.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send booking confirmation via ses: %w", err)
	}

	n.log.InfoContext(ctx, "booking confirmation sent",
		"booking_id", in.BookingID,
		"message_id", aws.ToString(out.MessageId),
	)
	return nil
}

func renderConfirmation(in BookingConfirmation) (subject, body string) {
	title := in.EventTitle
	if title == "" {
		title = "your event"
	}

	subject = "You're booked: " + title

	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for booking %s.\n", title)
	if in.EventDate != "" {
		fmt.Fprintf(&b, "When: %s %s\n", in.EventDate, in.EventTime)
	}
	if in.EventSlug != "" {
		fmt.Fprintf(&b, "Details: /events/%s\n", in.EventSlug)
	}
	fmt.Fprintf(&b, "Booking reference: %s\n", in.BookingID)

	return subject, b.String()
}
