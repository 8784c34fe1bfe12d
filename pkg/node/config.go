package node

import "github.com/audionodes/native/pkg/models"

// ValidateOption looks up option name in options and checks value against its
// advertised values. On success it returns the position of value in the
// option's AvailableValues.
func ValidateOption(options []models.ConfigurationDescriptor, name, value string) (int, Status) {
	for _, opt := range options {
		if opt.Name != name {
			continue
		}

		for i, v := range opt.AvailableValues {
			if v == value {
				return i, StatusOK
			}
		}

		return -1, StatusInvalidValue
	}

	return -1, StatusUnknownOption
}
