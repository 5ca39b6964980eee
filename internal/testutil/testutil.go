package testutil

import (
	"os"

	"github.com/spf13/viper"
)

// GetTestViper loads a standalone viper instance from YAML content.
func GetTestViper(content string) (*viper.Viper, error) {
	configFile, cleanup, err := WriteStringToTempFileWithExtension(content, ".yaml")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	testConfig := viper.New()
	testConfig.SetConfigType("yaml")
	testConfig.SetConfigFile(configFile)
	if err := testConfig.ReadInConfig(); err != nil {
		return nil, err
	}
	return testConfig, nil
}

// WriteStringToTempFileWithExtension is WriteStringToTempFile with a file
// name ending in extension.
func WriteStringToTempFileWithExtension(content string, extension string) (string, func(), error) {
	tempFile, err := os.CreateTemp("", "temp-*"+extension)
	if err != nil {
		return "", nil, err
	}
	return finishTempFile(tempFile, content)
}

// WriteStringToTempFile returns the file path and a cleanup function.
func WriteStringToTempFile(content string) (string, func(), error) {
	tempFile, err := os.CreateTemp("", "temp-*")
	if err != nil {
		return "", nil, err
	}
	return finishTempFile(tempFile, content)
}

func finishTempFile(tempFile *os.File, content string) (string, func(), error) {
	if _, err := tempFile.WriteString(content); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return "", nil, err
	}
	tempFile.Close()

	cleanup := func() {
		os.Remove(tempFile.Name())
	}
	return tempFile.Name(), cleanup, nil
}
