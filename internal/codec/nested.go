package codec

import (
	"time"

	"taskwire/internal/models"
)

var regulatorInfoBindings = []binding[models.RegulatorInfo]{
	listField("regulators", "Regulators", "regulator", regulatorTable,
		func(r *models.RegulatorInfo) *[]models.Regulator { return &r.Regulators }),
}

var regulatorBindings = []binding[models.Regulator]{
	handleField("id", "ID", func(r *models.Regulator) *models.ObjectHandle { return &r.ID }),
	textField("name", "Name", func(r *models.Regulator) *string { return &r.Name }),
}

var permissionBindings = []binding[models.TaskPermissions]{
	boolField("read", "Read", func(p *models.TaskPermissions) *bool { return &p.Read }),
	boolField("write", "Write", func(p *models.TaskPermissions) *bool { return &p.Write }),
	boolField("comment", "Comment", func(p *models.TaskPermissions) *bool { return &p.Comment }),
	boolField("assign", "Assign", func(p *models.TaskPermissions) *bool { return &p.Assign }),
	boolField("close", "Close", func(p *models.TaskPermissions) *bool { return &p.Close }),
	boolField("change_members", "ChangeMembers", func(p *models.TaskPermissions) *bool { return &p.ChangeMembers }),
	boolField("attach_file", "AttachFile", func(p *models.TaskPermissions) *bool { return &p.AttachFile }),
	boolField("read_attachments", "ReadAttachments", func(p *models.TaskPermissions) *bool { return &p.ReadAttachments }),
	boolField("delete_attachments", "DeleteAttachments", func(p *models.TaskPermissions) *bool { return &p.DeleteAttachments }),
}

var userBindings = []binding[models.User]{
	intField("id", "ID", func(u *models.User) *int64 { return &u.ID }),
	textField("fname", "FirstName", func(u *models.User) *string { return &u.FirstName }),
	textField("lname", "LastName", func(u *models.User) *string { return &u.LastName }),
	textField("display_name", "DisplayName", func(u *models.User) *string { return &u.DisplayName }),
	textField("email", "Email", func(u *models.User) *string { return &u.Email }),
	textField("status", "Status", func(u *models.User) *string { return &u.Status }),
	boolField("locked", "Locked", func(u *models.User) *bool { return &u.Locked }),
	boolField("is_external", "External", func(u *models.User) *bool { return &u.External }),
}

var actionBindings = []binding[models.ActionInfo]{
	intField("id", "ID", func(a *models.ActionInfo) *int64 { return &a.ID }),
	textField("name", "Name", func(a *models.ActionInfo) *string { return &a.Name }),
	boolField("enabled", "Enabled", func(a *models.ActionInfo) *bool { return &a.Enabled }),
}

// commentBindings refers to itself through "children", so it is filled in
// by init.
var commentBindings []binding[models.Comment]

func init() {
	commentBindings = []binding[models.Comment]{
		intField("id", "ID", func(c *models.Comment) *int64 { return &c.ID }),
		optIntField("parent_id", "ParentID", func(c *models.Comment) **int64 { return &c.ParentID }),
		optHandleField("user_id", "UserID", func(c *models.Comment) **models.ObjectHandle { return &c.UserID }),
		textField("user_fname", "UserFirstName", func(c *models.Comment) *string { return &c.UserFirstName }),
		textField("user_lname", "UserLastName", func(c *models.Comment) *string { return &c.UserLastName }),
		textField("text", "Text", func(c *models.Comment) *string { return &c.Text }),
		timeField("create_date", "CreateDate", func(c *models.Comment) *time.Time { return &c.CreateDate }),
		timeField("modify_date", "ModifyDate", func(c *models.Comment) *time.Time { return &c.ModifyDate }),
		boolField("is_deleted", "Deleted", func(c *models.Comment) *bool { return &c.Deleted }),
		listField("children", "Children", "comment", commentTable,
			func(c *models.Comment) *[]models.Comment { return &c.Children }),
	}
}

func regulatorInfoTable() []binding[models.RegulatorInfo] { return regulatorInfoBindings }
func regulatorTable() []binding[models.Regulator]         { return regulatorBindings }
func permissionTable() []binding[models.TaskPermissions]  { return permissionBindings }
func userTable() []binding[models.User]                   { return userBindings }
func commentTable() []binding[models.Comment]             { return commentBindings }
func actionTable() []binding[models.ActionInfo]           { return actionBindings }
