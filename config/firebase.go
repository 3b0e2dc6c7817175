package config

// FirebaseServiceAccountKeyPath points at the service account JSON used
// for the FCM messaging client. Override via config file or env.
var FirebaseServiceAccountKeyPath = "./config/firebase-service-account.json"
