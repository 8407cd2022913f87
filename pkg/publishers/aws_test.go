package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/travelbank/accounts-loans/pkg/loans"
)

func sampleEvent() Event {
	return NewEvent("loans", "9876543210", &loans.Response{
		StatusCode: 200,
		Loan: loans.LoanDetails{
			MobileNumber:      "9876543210",
			LoanNumber:        "LN1001",
			LoanType:          "HOME",
			TotalLoan:         500000,
			AmountPaid:        100000,
			OutstandingAmount: 400000,
		},
	})
}

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendsEvent(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://sqs.example.com/queue",
		client:   client,
		log:      ensureLogger(nil),
	}

	if err := pub.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://sqs.example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["loan_number"]
	if !ok || aws.ToString(attr.StringValue) != "LN1001" {
		t.Fatalf("loan_number attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if body := aws.ToString(client.input.MessageBody); !strings.Contains(body, `"mobile_number":"9876543210"`) {
		t.Fatalf("MessageBody missing mobile_number: %s", body)
	}
}

func TestSQSPublisherSendError(t *testing.T) {
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://sqs.example.com/queue",
		client:   &fakeSQSClient{err: errors.New("boom")},
		log:      ensureLogger(nil),
	}
	if err := pub.Publish(context.Background(), sampleEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSNSPublisherSendsEvent(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:ap-south-1:123456789012:loan-lookups",
		client:   client,
		log:      ensureLogger(nil),
	}

	if err := pub.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:ap-south-1:123456789012:loan-lookups" {
		t.Fatalf("TopicArn = %s", got)
	}
	if attr, ok := client.input.MessageAttributes["service"]; !ok || aws.ToString(attr.StringValue) != "loans" {
		t.Fatalf("service attribute missing or wrong: %#v", attr)
	}
	if msg := aws.ToString(client.input.Message); !strings.Contains(msg, `"loanNumber":"LN1001"`) {
		t.Fatalf("Message missing loan: %s", msg)
	}
}

func TestSNSPublisherSendError(t *testing.T) {
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   &fakeSNSClient{err: errors.New("boom")},
		log:      ensureLogger(nil),
	}
	if err := pub.Publish(context.Background(), sampleEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestStringAttributesDropsEmptyValues(t *testing.T) {
	evt := NewEvent("loans", "1", nil)
	attrs := stringAttributes(evt.attributes())
	if _, ok := attrs["loan_number"]; ok {
		t.Fatalf("empty loan_number should be dropped: %#v", attrs)
	}
	if attrs["service"] != "loans" {
		t.Fatalf("service attribute = %q", attrs["service"])
	}
}
