package engine

import (
	"context"
	"strconv"

	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SetInputValue sets the value an unconnected input socket streams.
func (e *Engine) SetInputValue(uid uint64, index int, value float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("SetInputValue", uid)
	if err != nil {
		return err
	}

	return en.node.SetInputValue(index, value)
}

// SetPropertyValue sets a node property.
func (e *Engine) SetPropertyValue(uid uint64, index int, value int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("SetPropertyValue", uid)
	if err != nil {
		return err
	}

	return en.node.SetPropertyValue(index, value)
}

// PropertyValue reads a node property.
func (e *Engine) PropertyValue(uid uint64, index int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("PropertyValue", uid)
	if err != nil {
		return 0, err
	}

	return en.node.PropertyValue(index)
}

// ConfigurationOptions lists a node's host-configurable options.
func (e *Engine) ConfigurationOptions(uid uint64) ([]models.ConfigurationDescriptor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("ConfigurationOptions", uid)
	if err != nil {
		return nil, err
	}

	return en.node.ConfigurationOptions(), nil
}

// SetConfigurationOption applies a named option. The node's status code is
// returned as is; err is only set for an unknown node.
func (e *Engine) SetConfigurationOption(uid uint64, name, value string) (node.Status, error) {
	_, span := otelhelper.StartSpan(context.Background(), e.tracer, "engine.set_configuration_option",
		attribute.String(otelhelper.NodeUIDKey, strconv.FormatUint(uid, 10)),
		attribute.String(otelhelper.ConfigOptionKey, name),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("SetConfigurationOption", uid)
	if err != nil {
		otelhelper.SetError(span, err)

		return node.StatusUnsupported, err
	}

	span.SetAttributes(attribute.String(otelhelper.NodeTypeKey, en.base.TypeID()))

	status := en.node.SetConfigurationOption(name, value)
	if !status.OK() {
		e.logger.Debug("Configuration option rejected", "uid", uid, "option", name, "value", value, "status", status)
		span.SetStatus(codes.Error, status.String())
	}

	return status, nil
}

// ReceiveBinary hands a binary payload to a node.
func (e *Engine) ReceiveBinary(uid uint64, kind int, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("ReceiveBinary", uid)
	if err != nil {
		return err
	}

	return en.node.ReceiveBinary(kind, data)
}

// AcknowledgeUI clears a node's debounce latch once the host processed its
// last UI update.
func (e *Engine) AcknowledgeUI(uid uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("AcknowledgeUI", uid)
	if err != nil {
		return err
	}

	en.base.ClearRefreshUI()

	return nil
}
