package publishers

import (
	"errors"
	"fmt"
	"strings"
)

// sanitizePublisherConfig trims and normalizes the publisher config fields.
func sanitizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}

	var events []string
	for _, e := range cfg.Events {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			events = append(events, e)
		}
	}
	cfg.Events = events

	if cfg.Queue != nil {
		qc := sanitizeQueueConfig(*cfg.Queue)
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		hc := *cfg.HTTP
		hc.URL = strings.TrimSpace(hc.URL)
		hc.Method = strings.ToUpper(strings.TrimSpace(hc.Method))
		if hc.Method == "" {
			hc.Method = httpDefaultMethod
		}
		hc.Headers = sanitizeHeaders(hc.Headers)
		if hc.TimeoutSeconds <= 0 {
			hc.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &hc
	}
	return cfg
}

func sanitizeQueueConfig(qc QueuePublisherConfig) QueuePublisherConfig {
	qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
	if qc.AWS != nil {
		a := *qc.AWS
		trimAll(&a.QueueURL, &a.Region, &a.AccessKeyID, &a.SecretAccessKey)
		qc.AWS = &a
	}
	if qc.SNS != nil {
		s := *qc.SNS
		trimAll(&s.TopicARN, &s.Region, &s.AccessKeyID, &s.SecretAccessKey)
		qc.SNS = &s
	}
	if qc.Azure != nil {
		a := *qc.Azure
		trimAll(&a.ConnectionString, &a.QueueName)
		qc.Azure = &a
	}
	if qc.GCP != nil {
		g := *qc.GCP
		trimAll(&g.ProjectID, &g.Topic, &g.CredentialsFile)
		qc.GCP = &g
	}
	return qc
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key, val := strings.TrimSpace(k), strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validatePublisherConfig checks that required fields are present.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeLog:
		return nil
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for publisher %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for publisher %q", cfg.ID)
		}
		return nil
	case TypeQueue:
		return validateQueueConfig(cfg.ID, cfg.Queue)
	default:
		return fmt.Errorf("type %q not supported for publisher %q", cfg.Type, cfg.ID)
	}
}

func validateQueueConfig(id string, qc *QueuePublisherConfig) error {
	if qc == nil {
		return fmt.Errorf("queue config required for publisher %q", id)
	}
	switch qc.Provider {
	case QueueProviderAWSSQS:
		if qc.AWS == nil {
			return fmt.Errorf("sqs config required for publisher %q", id)
		}
		return requireFields(id, "sqs", map[string]string{
			"uri":               qc.AWS.QueueURL,
			"region":            qc.AWS.Region,
			"access_key_id":     qc.AWS.AccessKeyID,
			"secret_access_key": qc.AWS.SecretAccessKey,
		})
	case QueueProviderAWSSNS:
		if qc.SNS == nil {
			return fmt.Errorf("sns config required for publisher %q", id)
		}
		return requireFields(id, "sns", map[string]string{
			"topic_arn":         qc.SNS.TopicARN,
			"region":            qc.SNS.Region,
			"access_key_id":     qc.SNS.AccessKeyID,
			"secret_access_key": qc.SNS.SecretAccessKey,
		})
	case QueueProviderGCP:
		if qc.GCP == nil {
			return fmt.Errorf("gcp config required for publisher %q", id)
		}
		return requireFields(id, "gcp", map[string]string{
			"project_id": qc.GCP.ProjectID,
			"topic":      qc.GCP.Topic,
		})
	case QueueProviderAzure:
		return fmt.Errorf("queue provider %q not implemented for publisher %q", qc.Provider, id)
	default:
		return fmt.Errorf("queue provider %q not supported for publisher %q", qc.Provider, id)
	}
}

// requireFields reports the first missing field in name order.
func requireFields(id, section string, fields map[string]string) error {
	for _, name := range []string{"uri", "topic_arn", "project_id", "topic", "region", "access_key_id", "secret_access_key"} {
		val, ok := fields[name]
		if ok && val == "" {
			return fmt.Errorf("%s.%s is required for publisher %q", section, name, id)
		}
	}
	return nil
}
