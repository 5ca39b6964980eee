package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/stratoshell/stratoshell/pkg/hwc"
	"github.com/stratoshell/stratoshell/pkg/signer"
	"github.com/stratoshell/stratoshell/pkg/sshutils"
)

const (
	keyAccessKey = "hwc.access_key"
	keySecretKey = "hwc.secret_key"
	keyDomain    = "hwc.domain"
	keyRegion    = "hwc.region"
	keyOutput    = "output.format"

	keyInteractiveIdleTimeout = "ssh.interactive_idle_timeout"
	keyExecIdleTimeout        = "ssh.exec_idle_timeout"
	keyDialTimeout            = "ssh.dial_timeout"
	keyEventsURL              = "ssh.events_url"
)

func setDefaults() {
	viper.SetDefault(keyDomain, hwc.DefaultDomain)
	viper.SetDefault(keyOutput, formatTable)
	viper.SetDefault(keyInteractiveIdleTimeout, sshutils.InteractiveIdleTimeout)
	viper.SetDefault(keyExecIdleTimeout, sshutils.ExecIdleTimeout)
	viper.SetDefault(keyDialTimeout, sshutils.SSHDialTimeout)
}

// newClient builds the cloud client from configuration. Tests replace it.
var newClient = func() (*hwc.Client, error) {
	creds, err := signer.NewCredentials(viper.GetString(keyAccessKey), viper.GetString(keySecretKey))
	if err != nil {
		return nil, fmt.Errorf(
			"cloud credentials missing, set %s_HWC_ACCESS_KEY and %s_HWC_SECRET_KEY or hwc.access_key and hwc.secret_key: %w",
			envPrefix, envPrefix, err)
	}
	client, err := hwc.NewClient(creds)
	if err != nil {
		return nil, err
	}
	if domain := strings.TrimSpace(viper.GetString(keyDomain)); domain != "" {
		client.Domain = domain
	}
	return client, nil
}

func requireRegion() (string, error) {
	region := strings.TrimSpace(viper.GetString(keyRegion))
	if region == "" {
		return "", fmt.Errorf("region is required, pass --region or set hwc.region")
	}
	return region, nil
}

// sshDialer is replaced in tests.
var sshDialer = func() sshutils.SSHDialer {
	return sshutils.NewSSHDial(viper.GetDuration(keyDialTimeout))
}
