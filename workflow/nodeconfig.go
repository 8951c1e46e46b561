package workflow

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/jax-labs/apexflow/errors"
)

// Typed configuration structs, one per node type. The engine resolves the
// raw Data bag against the variable store first, then decodes the resolved
// map into one of these; missing required fields surface here as
// MISSING_FIELD errors rather than as nil-map panics downstream.

// StartConfig configures a start node.
type StartConfig struct {
	Message string
}

// PriceCheckConfig configures a price-check node.
type PriceCheckConfig struct {
	Symbol string
}

// ConditionConfig configures a condition node.
type ConditionConfig struct {
	Left     any
	Operator string
	Right    any
}

// PlaceOrderConfig configures a place-order node.
type PlaceOrderConfig struct {
	ExchangeID string
	Symbol     string
	Side       string
	OrderType  string
	Amount     float64
	// Price is nil for market orders.
	Price *float64
}

// WebhookConfig configures a webhook node.
type WebhookConfig struct {
	URL   string
	Event string
	Data  any
}

// NotificationConfig configures a notification node.
type NotificationConfig struct {
	Message string
	Channel string
}

// DelayConfig configures a delay node.
type DelayConfig struct {
	Duration time.Duration
}

// SetVariableConfig configures a set-variable node.
type SetVariableConfig struct {
	Name  string
	Value any
}

// MessageConfig configures a message node.
type MessageConfig struct {
	Message string
}

// DecodeStart decodes a resolved data bag into a StartConfig.
func DecodeStart(nodeID string, data map[string]any) (StartConfig, error) {
	return StartConfig{Message: AsString(data["message"])}, nil
}

// DecodePriceCheck decodes a resolved data bag into a PriceCheckConfig.
func DecodePriceCheck(nodeID string, data map[string]any) (PriceCheckConfig, error) {
	symbol := AsString(data["symbol"])
	if symbol == "" {
		return PriceCheckConfig{}, apperrors.MissingField(nodeID, "symbol")
	}
	return PriceCheckConfig{Symbol: symbol}, nil
}

// DecodeCondition decodes a resolved data bag into a ConditionConfig.
// Operands stay untyped here; the comparison decides numeric vs string.
func DecodeCondition(nodeID string, data map[string]any) (ConditionConfig, error) {
	return ConditionConfig{
		Left:     data["leftValue"],
		Operator: AsString(data["operator"]),
		Right:    data["rightValue"],
	}, nil
}

// DecodePlaceOrder decodes a resolved data bag into a PlaceOrderConfig.
func DecodePlaceOrder(nodeID string, data map[string]any) (PlaceOrderConfig, error) {
	cfg := PlaceOrderConfig{
		ExchangeID: AsString(data["exchangeId"]),
		Symbol:     AsString(data["symbol"]),
		Side:       AsString(data["side"]),
		OrderType:  AsString(data["orderType"]),
	}
	if cfg.ExchangeID == "" {
		return cfg, apperrors.MissingField(nodeID, "exchangeId")
	}
	if cfg.Symbol == "" {
		return cfg, apperrors.MissingField(nodeID, "symbol")
	}
	if cfg.Side == "" {
		return cfg, apperrors.MissingField(nodeID, "side")
	}
	if cfg.OrderType == "" {
		cfg.OrderType = "market"
	}

	amount, ok := AsFloat(data["amount"])
	if !ok {
		return cfg, apperrors.MissingField(nodeID, "amount")
	}
	cfg.Amount = amount

	if raw, present := data["price"]; present {
		if price, ok := AsFloat(raw); ok {
			cfg.Price = &price
		}
	}
	return cfg, nil
}

// DecodeWebhook decodes a resolved data bag into a WebhookConfig.
func DecodeWebhook(nodeID string, data map[string]any) (WebhookConfig, error) {
	url := AsString(data["webhookUrl"])
	if url == "" {
		return WebhookConfig{}, apperrors.MissingField(nodeID, "webhookUrl")
	}
	event := AsString(data["event"])
	if event == "" {
		event = "workflow.event"
	}
	return WebhookConfig{URL: url, Event: event, Data: data["data"]}, nil
}

// DecodeNotification decodes a resolved data bag into a NotificationConfig.
func DecodeNotification(nodeID string, data map[string]any) (NotificationConfig, error) {
	cfg := NotificationConfig{
		Message: AsString(data["message"]),
		Channel: AsString(data["channel"]),
	}
	if cfg.Channel == "" {
		cfg.Channel = "console"
	}
	return cfg, nil
}

// DecodeDelay decodes a resolved data bag into a DelayConfig.
// The delay field is in milliseconds and defaults to 1000.
func DecodeDelay(nodeID string, data map[string]any) (DelayConfig, error) {
	ms, ok := AsFloat(data["delay"])
	if !ok || ms < 0 {
		ms = 1000
	}
	return DelayConfig{Duration: time.Duration(ms) * time.Millisecond}, nil
}

// DecodeSetVariable decodes a resolved data bag into a SetVariableConfig.
func DecodeSetVariable(nodeID string, data map[string]any) (SetVariableConfig, error) {
	name := AsString(data["variableName"])
	if name == "" {
		return SetVariableConfig{}, apperrors.MissingField(nodeID, "variableName")
	}
	return SetVariableConfig{Name: name, Value: data["value"]}, nil
}

// DecodeMessage decodes a resolved data bag into a MessageConfig.
func DecodeMessage(nodeID string, data map[string]any) (MessageConfig, error) {
	return MessageConfig{Message: AsString(data["message"])}, nil
}

// AsString renders a configuration value as a string. Nil becomes "".
func AsString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AsFloat coerces a configuration value to a float64. Strings are parsed,
// matching the loose numeric handling of flow-builder exports where amounts
// arrive as either numbers or numeric strings.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
