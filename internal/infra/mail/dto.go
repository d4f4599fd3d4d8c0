package mail

type ScheduledMessageAlertData struct {
	MessageID   string
	ChannelName string
	Reason      string
}

type AlertSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}
