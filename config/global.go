package config

import "github.com/spf13/viper"

// globalStore is the process-wide configuration store, level 2 of the
// ladder. It is a single *viper.Viper instance so a process embedding
// this driver can set connection defaults once (e.g. from its own flags
// or a shared config file) and have every connection opened afterward
// see them, without threading Options through every call site.
var globalStore = viper.New()

// SetGlobal sets one of the level-2 keys: dsn, instance, credentials_file,
// credentials, host, port, user, password, database, branch, secret_key,
// cloud_profile, tls_ca, tls_security, tls_server_name.
func SetGlobal(key string, value any) { globalStore.Set(key, value) }

// ResetGlobal clears the process-wide store, mainly useful in tests.
func ResetGlobal() { globalStore = viper.New() }

func globalOptions() Options {
	var o Options
	if globalStore.IsSet("dsn") {
		v := globalStore.GetString("dsn")
		o.DSN = &v
	}
	if globalStore.IsSet("instance") {
		v := globalStore.GetString("instance")
		o.InstanceName = &v
	}
	if globalStore.IsSet("credentials_file") {
		v := globalStore.GetString("credentials_file")
		o.CredentialsFile = &v
	}
	if globalStore.IsSet("credentials") {
		v := globalStore.GetString("credentials")
		o.Credentials = &v
	}
	if globalStore.IsSet("host") {
		v := globalStore.GetString("host")
		o.Host = &v
	}
	if globalStore.IsSet("port") {
		v := globalStore.GetInt("port")
		o.Port = &v
	}
	if globalStore.IsSet("user") {
		v := globalStore.GetString("user")
		o.User = &v
	}
	if globalStore.IsSet("password") {
		v := globalStore.GetString("password")
		o.Password = &v
	}
	if globalStore.IsSet("database") {
		v := globalStore.GetString("database")
		o.Database = &v
	}
	if globalStore.IsSet("branch") {
		v := globalStore.GetString("branch")
		o.Branch = &v
	}
	if globalStore.IsSet("secret_key") {
		v := globalStore.GetString("secret_key")
		o.SecretKey = &v
	}
	if globalStore.IsSet("cloud_profile") {
		v := globalStore.GetString("cloud_profile")
		o.CloudProfile = &v
	}
	if globalStore.IsSet("tls_ca") {
		v := globalStore.GetString("tls_ca")
		o.TLSCA = &v
	}
	if globalStore.IsSet("tls_security") {
		v := tlsSecurityValue(globalStore.GetString("tls_security"))
		o.TLSSecurity = &v
	}
	if globalStore.IsSet("tls_server_name") {
		v := globalStore.GetString("tls_server_name")
		o.TLSServerName = &v
	}
	return o
}
