package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: topic
    type: SNS
    sns:
      topic_arn: arn:aws:sns:ap-south-1:123456789012:loan-lookups
      region: ap-south-1
      endpoint: http://localhost:4566
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "topic" {
		t.Fatalf("expected only topic enabled, got %#v", enabled)
	}
	if enabled[0].Type != TypeSNS {
		t.Fatalf("type should be normalized, got %q", enabled[0].Type)
	}
	if enabled[0].SNS.Region != "ap-south-1" || enabled[0].SNS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline aws config not decoded: %#v", enabled[0].SNS)
	}
	if _, ok := reg.ByID("http1"); !ok {
		t.Fatalf("disabled publisher should still be listed by id")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http":       {ID: "h1", Type: TypeHTTP},
		"missing sqs queue":  {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{AWSConfig: AWSConfig{Region: "ap-south-1"}}},
		"missing sns region": {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		"half credentials": {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{
			TopicARN:  "arn",
			AWSConfig: AWSConfig{Region: "ap-south-1", AccessKeyID: "AKIA"},
		}},
		"missing topic": {ID: "g", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubConfig{ProjectID: "p"}},
		"unknown type":  {ID: "k", Type: "kafka"},
	}
	for name, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	ok := PublisherConfig{ID: "g", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubConfig{ProjectID: "p", Topic: "t"}}
	if err := validatePublisherConfig(ok); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
