package sqldb

type Connection struct {
	ID          int64
	Name        string
	Url         string
	Username    string
	Password    string
	IsConnected int64
}

type Preference struct {
	Key   string
	Value string
}
