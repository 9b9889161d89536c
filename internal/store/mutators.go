package store

import "github.com/langchou/rentdeck/internal/models"

// ToggleDarkMode 切换主题并持久化
func (s *Store) ToggleDarkMode() {
	s.mu.Lock()
	s.darkMode = !s.darkMode
	dark := s.darkMode
	s.mu.Unlock()

	s.persistDarkMode(dark)
	s.notify(UpdateTheme, dark)
}

// SetDarkMode 直接设置主题（系统偏好变化时用）
func (s *Store) SetDarkMode(dark bool) {
	s.mu.Lock()
	s.darkMode = dark
	s.mu.Unlock()

	s.persistDarkMode(dark)
	s.notify(UpdateTheme, dark)
}

// UpdateUserProfile 浅合并更新个人资料
func (s *Store) UpdateUserProfile(patch models.UserProfilePatch) {
	s.mu.Lock()
	p := &s.userProfile
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = *patch.PhoneNumber
	}
	if patch.ProfilePicture != nil {
		p.ProfilePicture = *patch.ProfilePicture
	}
	if patch.MemberSince != nil {
		p.MemberSince = *patch.MemberSince
	}
	if patch.LicenseFile != nil {
		p.LicenseFile = *patch.LicenseFile
	}
	if patch.HomeAddress != nil {
		p.HomeAddress = *patch.HomeAddress
	}
	if patch.BillingAddress != nil {
		p.BillingAddress = *patch.BillingAddress
	}
	snapshot := s.userProfile
	s.mu.Unlock()

	s.notify(UpdateProfile, snapshot)
}

// UpdateCars 整体替换搜索结果
func (s *Store) UpdateCars(cars []models.Car) {
	s.mu.Lock()
	s.cars = append([]models.Car(nil), cars...)
	s.mu.Unlock()

	s.notify(UpdateCars, cars)
}

// SetSelectedCar 设置选中车辆
func (s *Store) SetSelectedCar(car models.Car) {
	s.mu.Lock()
	s.selectedCar = &car
	s.mu.Unlock()

	s.notify(UpdateSelectedCar, car)
}

// UpdateActiveRental 浅合并更新当前租用；没有现值时以补丁建新值
func (s *Store) UpdateActiveRental(patch models.RentalPatch) {
	s.mu.Lock()
	if s.activeRental == nil {
		s.activeRental = &models.Rental{}
	}
	r := s.activeRental
	if patch.CarName != nil {
		r.CarName = *patch.CarName
	}
	if patch.CarType != nil {
		r.CarType = *patch.CarType
	}
	if patch.ImageURL != nil {
		r.ImageURL = *patch.ImageURL
	}
	if patch.PickupDate != nil {
		r.PickupDate = *patch.PickupDate
	}
	if patch.PickupLocation != nil {
		r.PickupLocation = *patch.PickupLocation
	}
	if patch.ReturnDate != nil {
		r.ReturnDate = *patch.ReturnDate
	}
	if patch.ReturnLocation != nil {
		r.ReturnLocation = *patch.ReturnLocation
	}
	snapshot := *r
	s.mu.Unlock()

	s.notify(UpdateRental, snapshot)
}

// SetCurrentReservation 设置当前预订
func (s *Store) SetCurrentReservation(r models.Reservation) {
	s.mu.Lock()
	s.currentReservation = &r
	s.mu.Unlock()

	s.notify(UpdateReservation, r)
}

// UpdatePaymentData 浅合并更新付款表单
func (s *Store) UpdatePaymentData(patch models.PaymentDataPatch) {
	s.mu.Lock()
	if patch.PaymentMethod != nil {
		s.paymentData.PaymentMethod = *patch.PaymentMethod
	}
	if patch.CardDetails != nil {
		s.paymentData.CardDetails = *patch.CardDetails
	}
	if patch.BillingAddress != nil {
		s.paymentData.BillingAddress = *patch.BillingAddress
	}
	if patch.TotalAmount != nil {
		s.paymentData.TotalAmount = *patch.TotalAmount
	}
	snapshot := s.paymentData
	s.mu.Unlock()

	s.notify(UpdatePayment, snapshot)
}

// UpdatePaymentMethod 只更新支付方式
func (s *Store) UpdatePaymentMethod(method string) {
	s.UpdatePaymentData(models.PaymentDataPatch{PaymentMethod: &method})
}

// UpdateCardDetails 浅合并更新银行卡信息
func (s *Store) UpdateCardDetails(patch models.CardDetailsPatch) {
	s.mu.Lock()
	d := &s.paymentData.CardDetails
	if patch.CardNumber != nil {
		d.CardNumber = *patch.CardNumber
	}
	if patch.ExpiryDate != nil {
		d.ExpiryDate = *patch.ExpiryDate
	}
	if patch.CVC != nil {
		d.CVC = *patch.CVC
	}
	if patch.NameOnCard != nil {
		d.NameOnCard = *patch.NameOnCard
	}
	snapshot := s.paymentData
	s.mu.Unlock()

	s.notify(UpdatePayment, snapshot)
}

// UpdateBillingAddress 浅合并更新账单地址
func (s *Store) UpdateBillingAddress(patch models.BillingAddressPatch) {
	s.mu.Lock()
	a := &s.paymentData.BillingAddress
	if patch.Address != nil {
		a.Address = *patch.Address
	}
	if patch.City != nil {
		a.City = *patch.City
	}
	if patch.State != nil {
		a.State = *patch.State
	}
	if patch.ZipCode != nil {
		a.ZipCode = *patch.ZipCode
	}
	snapshot := s.paymentData
	s.mu.Unlock()

	s.notify(UpdatePayment, snapshot)
}

// UpdateSearchCriteria 浅合并更新搜索条件
func (s *Store) UpdateSearchCriteria(patch models.SearchCriteriaPatch) {
	s.mu.Lock()
	c := &s.searchCriteria
	if patch.Location != nil {
		c.Location = *patch.Location
	}
	if patch.StartDate != nil {
		c.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		c.EndDate = *patch.EndDate
	}
	if patch.Make != nil {
		c.Make = *patch.Make
	}
	if patch.Model != nil {
		c.Model = *patch.Model
	}
	if patch.VehicleType != nil {
		c.VehicleType = *patch.VehicleType
	}
	if patch.Passengers != nil {
		c.Passengers = *patch.Passengers
	}
	if patch.Doors != nil {
		c.Doors = *patch.Doors
	}
	if patch.FuelType != nil {
		c.FuelType = *patch.FuelType
	}
	if patch.Transmission != nil {
		c.Transmission = *patch.Transmission
	}
	snapshot := s.searchCriteria
	s.mu.Unlock()

	s.notify(UpdateSearch, snapshot)
}

// SetActiveTab 切换标签页
func (s *Store) SetActiveTab(tab string) {
	s.mu.Lock()
	s.activeTab = tab
	s.mu.Unlock()

	s.notify(UpdateUI, map[string]string{"activeTab": tab})
}

// SetActiveFilter 设置过滤器，空串清除
func (s *Store) SetActiveFilter(filter string) {
	s.mu.Lock()
	s.activeFilter = filter
	s.mu.Unlock()

	s.notify(UpdateUI, map[string]string{"activeFilter": filter})
}

// SetMakes 设置品牌列表
func (s *Store) SetMakes(makes []string) {
	s.setMetadata(func(m *Metadata) { m.Makes = append([]string(nil), makes...) })
}

// SetModels 设置型号列表
func (s *Store) SetModels(modelNames []string) {
	s.setMetadata(func(m *Metadata) { m.Models = append([]string(nil), modelNames...) })
}

// SetVehicleTypes 设置车型列表
func (s *Store) SetVehicleTypes(types []string) {
	s.setMetadata(func(m *Metadata) { m.VehicleTypes = append([]string(nil), types...) })
}

// SetTransmissionTypes 设置变速箱类型列表
func (s *Store) SetTransmissionTypes(types []string) {
	s.setMetadata(func(m *Metadata) { m.TransmissionTypes = append([]string(nil), types...) })
}

// SetFuelTypes 设置燃料类型列表
func (s *Store) SetFuelTypes(types []string) {
	s.setMetadata(func(m *Metadata) { m.FuelTypes = append([]string(nil), types...) })
}

// SetVehicleStatuses 设置车辆状态列表
func (s *Store) SetVehicleStatuses(statuses []string) {
	s.setMetadata(func(m *Metadata) { m.VehicleStatuses = append([]string(nil), statuses...) })
}

func (s *Store) setMetadata(apply func(*Metadata)) {
	s.mu.Lock()
	apply(&s.metadata)
	s.mu.Unlock()

	s.notify(UpdateMetadata, s.Metadata())
}

// SetUserID 设置当前用户 ID
func (s *Store) SetUserID(id int64) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()

	s.notify(UpdateIdentity, s.identitySnapshot())
}

// ClearUserID 清除当前用户 ID
func (s *Store) ClearUserID() {
	s.SetUserID(0)
}

// SetUserRoles 设置当前用户角色集
func (s *Store) SetUserRoles(roles []string) {
	s.mu.Lock()
	s.userRoles = append([]string(nil), roles...)
	s.mu.Unlock()

	s.notify(UpdateIdentity, s.identitySnapshot())
}

// ClearUserRoles 清除当前用户角色集
func (s *Store) ClearUserRoles() {
	s.SetUserRoles(nil)
}

func (s *Store) identitySnapshot() map[string]any {
	return map[string]any{
		"userId": s.UserID(),
		"roles":  s.UserRoles(),
	}
}
